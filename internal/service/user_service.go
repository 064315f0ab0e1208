package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farizks7575/chat-app/internal/audit"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/repository"
	"github.com/farizks7575/chat-app/internal/storage"
	"github.com/farizks7575/chat-app/internal/token"
	"github.com/farizks7575/chat-app/pkg/log"
)

const avatarURLTTL = 24 * time.Hour

type userService struct {
	users  repository.UserRepository
	tokens *token.Manager
	store  storage.Storage
}

// NewUserService creates the account service.
func NewUserService(users repository.UserRepository, tokens *token.Manager, store storage.Storage) UserService {
	return &userService{users: users, tokens: tokens, store: store}
}

// Register creates an account with a hashed password and a stored profile
// image, then issues a session token.
func (s *userService) Register(ctx context.Context, req *domain.RegisterRequest, avatar *AvatarUpload) (*domain.AuthResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Gender == "" {
		return nil, ErrValidation
	}
	if avatar == nil {
		return nil, ErrMissingAvatar
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Gender:       req.Gender,
	}

	imageURL, err := s.storeAvatar(ctx, user.ID, avatar)
	if err != nil {
		return nil, err
	}
	user.Image = imageURL

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	return &domain.AuthResponse{User: user.ToResponse(), Token: tok}, nil
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.Log(ctx, audit.ActionLoginFailed, "", "login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.Log(ctx, audit.ActionLoginFailed, user.ID, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return &domain.AuthResponse{User: user.ToResponse(), Token: tok}, nil
}

// List returns every account's public profile.
func (s *userService) List(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, nil
}

// Update edits the caller's profile. Empty fields are left unchanged; a new
// avatar replaces the stored image.
func (s *userService) Update(ctx context.Context, userID string, req *domain.UpdateUserRequest, avatar *AvatarUpload) (*domain.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = strings.ToLower(req.Email)
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if avatar != nil {
		imageURL, err := s.storeAvatar(ctx, user.ID, avatar)
		if err != nil {
			return nil, err
		}
		user.Image = imageURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, user.ID, "profile updated")
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) storeAvatar(ctx context.Context, userID string, avatar *AvatarUpload) (string, error) {
	ext := filepath.Ext(avatar.Filename)
	key := fmt.Sprintf("avatars/%s%s", userID, ext)

	if err := s.store.Write(ctx, key, avatar.Reader, avatar.Size, avatar.ContentType); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	url, err := s.store.GetURL(ctx, key, avatarURLTTL)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldUserID, userID).Msg("avatar url resolution failed")
		return key, nil
	}
	return url, nil
}
