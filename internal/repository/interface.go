package repository

import (
	"context"
	"errors"

	"github.com/farizks7575/chat-app/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrMessageNotFound = errors.New("message not found")

	ErrRequestNotFound  = errors.New("friend request not found")
	ErrDuplicatePending = errors.New("a pending request already exists between these users")
	ErrAlreadyConnected = errors.New("users are already connected")
	ErrRequestResolved  = errors.New("friend request already resolved")
	ErrInvalidStatus    = errors.New("invalid request status")
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// MessageRepository persists chat messages. Create assigns the message id
// and timestamp; Delete is a hard delete.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)
	Delete(ctx context.Context, id string) (*domain.Message, error)
}

// RequestRepository persists friend requests. Create enforces at most one
// pending request and at most one accepted relationship per unordered pair.
// UpdateStatus resolves a pending request exactly once.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.FriendRequest) error
	GetByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.FriendRequest, error)
	FindPendingFor(ctx context.Context, receiverID string) ([]domain.FriendRequest, error)
	FindAcceptedFor(ctx context.Context, userID string) ([]domain.FriendRequest, error)
}
