package domain

import (
	"time"

	"gorm.io/gorm"
)

// Friend request lifecycle. A request is created pending and resolves to
// accepted or declined exactly once.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string         `gorm:"type:varchar(36);primaryKey"`
	Name         string         `gorm:"type:varchar(100);not null"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	Gender       string         `gorm:"type:varchar(20)"`
	Image        string         `gorm:"type:varchar(512)"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Gender:       m.Gender,
		Image:        m.Image,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts a domain User to its GORM model.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Gender:       u.Gender,
		Image:        u.Image,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// User is the domain representation of an account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Gender       string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserResponse is the API shape of a user, without credentials.
type UserResponse struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
	Image  string `json:"image"`
}

// ToResponse strips credential material from a user.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Gender: u.Gender,
		Image:  u.Image,
	}
}

// MessageModel is the GORM model for the messages table. Deletion is a hard
// delete: no DeletedAt column, a removed row is gone.
type MessageModel struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	SenderID   string    `gorm:"type:varchar(36);not null;index:idx_messages_pair"`
	ReceiverID string    `gorm:"type:varchar(36);not null;index:idx_messages_pair"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (MessageModel) TableName() string { return "messages" }

// ToDomain converts MessageModel to a domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:        m.ID,
		Sender:    m.SenderID,
		Receiver:  m.ReceiverID,
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
}

// Message is a persisted chat message. Immutable once created except for
// deletion. Wire names match what the web client expects.
type Message struct {
	ID        string    `json:"_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestModel is the GORM model for the friend_requests table.
type RequestModel struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	SenderID   string    `gorm:"type:varchar(36);not null;index"`
	ReceiverID string    `gorm:"type:varchar(36);not null;index"`
	Status     string    `gorm:"type:varchar(16);not null;default:pending;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (RequestModel) TableName() string { return "friend_requests" }

// ToDomain converts RequestModel to a domain FriendRequest.
func (m *RequestModel) ToDomain() *FriendRequest {
	return &FriendRequest{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FriendRequest is the domain representation of a friend-request handshake.
type FriendRequest struct {
	ID         string    `json:"requestId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Counterparty returns the other user of the request relative to userID.
func (r *FriendRequest) Counterparty(userID string) string {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}

// PendingRequest is a pending friend request together with its sender's
// public profile, as shown in the requests inbox.
type PendingRequest struct {
	FriendRequest
	Sender UserResponse `json:"sender"`
}

// Contact is an accepted connection formatted as the counterparty.
type Contact struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}
