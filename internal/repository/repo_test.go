package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farizks7575/chat-app/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.MessageModel{},
		&domain.RequestModel{},
	))
	return db
}

func TestUserRepoCreateAndGet(t *testing.T) {
	r := require.New(t)
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	user := &domain.User{
		ID:           "user-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Gender:       "female",
	}
	r.NoError(repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, "user-1")
	r.NoError(err)
	r.Equal("alice@example.com", got.Email)

	got, err = repo.GetByEmail(ctx, "alice@example.com")
	r.NoError(err)
	r.Equal("user-1", got.ID)
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	r := require.New(t)
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	r.NoError(repo.Create(ctx, &domain.User{
		ID: "user-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "h",
	}))

	err := repo.Create(ctx, &domain.User{
		ID: "user-2", Name: "Other", Email: "alice@example.com", PasswordHash: "h",
	})
	r.ErrorIs(err, ErrEmailExists)
}

func TestUserRepoGetUnknown(t *testing.T) {
	r := require.New(t)
	repo := NewGormUserRepository(testDB(t))

	_, err := repo.GetByID(context.Background(), "nobody")
	r.ErrorIs(err, ErrUserNotFound)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	r.ErrorIs(err, ErrUserNotFound)
}

func TestMessageRepoCreateAssignsIDAndTimestamp(t *testing.T) {
	r := require.New(t)
	repo := NewGormMessageRepository(testDB(t))

	msg := &domain.Message{Sender: "alice", Receiver: "bob", Content: "hello"}
	r.NoError(repo.Create(context.Background(), msg))

	r.NotEmpty(msg.ID)
	r.False(msg.Timestamp.IsZero())
}

func TestMessageRepoFindBetweenBothDirections(t *testing.T) {
	r := require.New(t)
	repo := NewGormMessageRepository(testDB(t))
	ctx := context.Background()

	for _, m := range []*domain.Message{
		{Sender: "alice", Receiver: "bob", Content: "one"},
		{Sender: "bob", Receiver: "alice", Content: "two"},
		{Sender: "alice", Receiver: "carol", Content: "other thread"},
	} {
		r.NoError(repo.Create(ctx, m))
	}

	msgs, err := repo.FindBetween(ctx, "alice", "bob")
	r.NoError(err)
	r.Len(msgs, 2)

	// Argument order must not matter.
	reversed, err := repo.FindBetween(ctx, "bob", "alice")
	r.NoError(err)
	r.Equal(msgs, reversed)
}

func TestMessageRepoDelete(t *testing.T) {
	r := require.New(t)
	repo := NewGormMessageRepository(testDB(t))
	ctx := context.Background()

	msg := &domain.Message{Sender: "alice", Receiver: "bob", Content: "oops"}
	r.NoError(repo.Create(ctx, msg))

	deleted, err := repo.Delete(ctx, msg.ID)
	r.NoError(err)
	r.Equal("alice", deleted.Sender)
	r.Equal("bob", deleted.Receiver)

	// The record is gone; a second delete reports not found.
	_, err = repo.Delete(ctx, msg.ID)
	r.ErrorIs(err, ErrMessageNotFound)

	msgs, err := repo.FindBetween(ctx, "alice", "bob")
	r.NoError(err)
	r.Empty(msgs)
}

func TestRequestRepoCreatePending(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))

	req := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(repo.Create(context.Background(), req))

	r.NotEmpty(req.ID)
	r.Equal(domain.StatusPending, req.Status)
}

func TestRequestRepoRejectsDuplicatePendingEitherDirection(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	r.NoError(repo.Create(ctx, &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))

	err := repo.Create(ctx, &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"})
	r.ErrorIs(err, ErrDuplicatePending)

	err = repo.Create(ctx, &domain.FriendRequest{SenderID: "bob", ReceiverID: "alice"})
	r.ErrorIs(err, ErrDuplicatePending)
}

func TestRequestRepoRejectsAlreadyConnected(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	req := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(repo.Create(ctx, req))
	_, err := repo.UpdateStatus(ctx, req.ID, domain.StatusAccepted)
	r.NoError(err)

	err = repo.Create(ctx, &domain.FriendRequest{SenderID: "bob", ReceiverID: "alice"})
	r.ErrorIs(err, ErrAlreadyConnected)
}

func TestRequestRepoDeclineAllowsRetry(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	req := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(repo.Create(ctx, req))
	_, err := repo.UpdateStatus(ctx, req.ID, domain.StatusDeclined)
	r.NoError(err)

	// A declined pair can try again.
	r.NoError(repo.Create(ctx, &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))
}

func TestRequestRepoUpdateStatus(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	req := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(repo.Create(ctx, req))

	updated, err := repo.UpdateStatus(ctx, req.ID, domain.StatusAccepted)
	r.NoError(err)
	r.Equal(domain.StatusAccepted, updated.Status)

	_, err = repo.UpdateStatus(ctx, req.ID, domain.StatusDeclined)
	r.ErrorIs(err, ErrRequestResolved)

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusAccepted)
	r.ErrorIs(err, ErrRequestNotFound)

	_, err = repo.UpdateStatus(ctx, req.ID, "bogus")
	r.ErrorIs(err, ErrInvalidStatus)
}

func TestRequestRepoFindPendingFor(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	r.NoError(repo.Create(ctx, &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))
	r.NoError(repo.Create(ctx, &domain.FriendRequest{SenderID: "carol", ReceiverID: "bob"}))
	r.NoError(repo.Create(ctx, &domain.FriendRequest{SenderID: "bob", ReceiverID: "dave"}))

	pending, err := repo.FindPendingFor(ctx, "bob")
	r.NoError(err)
	r.Len(pending, 2)
	for _, p := range pending {
		r.Equal("bob", p.ReceiverID)
		r.Equal(domain.StatusPending, p.Status)
	}
}

func TestRequestRepoFindAcceptedForEitherSide(t *testing.T) {
	r := require.New(t)
	repo := NewGormRequestRepository(testDB(t))
	ctx := context.Background()

	sent := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(repo.Create(ctx, sent))
	_, err := repo.UpdateStatus(ctx, sent.ID, domain.StatusAccepted)
	r.NoError(err)

	received := &domain.FriendRequest{SenderID: "carol", ReceiverID: "alice"}
	r.NoError(repo.Create(ctx, received))
	_, err = repo.UpdateStatus(ctx, received.ID, domain.StatusAccepted)
	r.NoError(err)

	accepted, err := repo.FindAcceptedFor(ctx, "alice")
	r.NoError(err)
	r.Len(accepted, 2)
}
