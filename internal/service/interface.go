package service

import (
	"context"
	"errors"
	"io"

	"github.com/farizks7575/chat-app/internal/domain"
)

var (
	ErrValidation         = errors.New("missing required field")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfRequest        = errors.New("cannot send a request to yourself")
	ErrMissingAvatar      = errors.New("profile image is required")
)

// AvatarUpload carries an uploaded profile image.
type AvatarUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// RelayService persists message events and fans them out to the live
// connections of the parties involved. Fan-out is fire-and-forget:
// persistence success is the only success criterion, an offline party
// simply catches up on its next fetch.
type RelayService interface {
	SendMessage(ctx context.Context, sender, receiver, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, userA, userB string) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, messageID, receiver, actorID string) error

	// Mirror entry points fan out without persisting; they serve clients
	// that re-announce an already-persisted event over the socket.
	MirrorMessage(ctx context.Context, msg domain.Message)
	MirrorDelete(ctx context.Context, messageID, receiver, actorID string)

	NotifyRequestCreated(ctx context.Context, req *domain.FriendRequest)
	NotifyRequestAccepted(ctx context.Context, req *domain.FriendRequest)
	NotifyRequestAcceptedByID(ctx context.Context, requestID string) error
}

// UserService handles accounts.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest, avatar *AvatarUpload) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	List(ctx context.Context) ([]domain.UserResponse, error)
	Update(ctx context.Context, userID string, req *domain.UpdateUserRequest, avatar *AvatarUpload) (*domain.UserResponse, error)
}

// RequestService handles the friend-request handshake.
type RequestService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequest, error)
	ListPending(ctx context.Context, receiverID string) ([]domain.PendingRequest, error)
	UpdateStatus(ctx context.Context, requestID, status string) (*domain.FriendRequest, error)
	ListAccepted(ctx context.Context, userID string) ([]domain.Contact, error)
}
