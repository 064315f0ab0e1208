package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farizks7575/chat-app/internal/cache"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/hub"
	"github.com/farizks7575/chat-app/internal/repository"
)

// fakeSink records every event pushed at a connection.
type fakeSink struct {
	events []interface{}
	err    error
}

func (s *fakeSink) SendEvent(v interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, v)
	return nil
}

// fakePresence is an in-memory presence registry.
type fakePresence struct {
	sinks map[string]*fakeSink
}

func newFakePresence(userIDs ...string) *fakePresence {
	p := &fakePresence{sinks: make(map[string]*fakeSink)}
	for _, id := range userIDs {
		p.sinks[id] = &fakeSink{}
	}
	return p
}

func (p *fakePresence) Lookup(userID string) (hub.Sink, bool) {
	s, ok := p.sinks[userID]
	if !ok {
		return nil, false
	}
	return s, true
}

type fakeMessageRepo struct {
	created []domain.Message
	stored  map[string]domain.Message
	fail    error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{stored: make(map[string]domain.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	if r.fail != nil {
		return r.fail
	}
	msg.ID = "msg-" + msg.Content
	msg.Timestamp = time.Now()
	r.created = append(r.created, *msg)
	r.stored[msg.ID] = *msg
	return nil
}

func (r *fakeMessageRepo) FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.created {
		if (m.Sender == userA && m.Receiver == userB) || (m.Sender == userB && m.Receiver == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id string) (*domain.Message, error) {
	m, ok := r.stored[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	delete(r.stored, id)
	return &m, nil
}

type fakeRequestRepo struct {
	byID map[string]domain.FriendRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: make(map[string]domain.FriendRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *domain.FriendRequest) error {
	req.ID = "req-" + req.SenderID + "-" + req.ReceiverID
	req.Status = domain.StatusPending
	r.byID[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.FriendRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	if req.Status != domain.StatusPending {
		return nil, repository.ErrRequestResolved
	}
	req.Status = status
	r.byID[id] = req
	return &req, nil
}

func (r *fakeRequestRepo) FindPendingFor(ctx context.Context, receiverID string) ([]domain.FriendRequest, error) {
	var out []domain.FriendRequest
	for _, req := range r.byID {
		if req.ReceiverID == receiverID && req.Status == domain.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) FindAcceptedFor(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	var out []domain.FriendRequest
	for _, req := range r.byID {
		if req.Status == domain.StatusAccepted && (req.SenderID == userID || req.ReceiverID == userID) {
			out = append(out, req)
		}
	}
	return out, nil
}

// fakeCache counts invalidations and serves nothing.
type fakeCache struct {
	invalidated int
}

func (c *fakeCache) Get(ctx context.Context, a, b string) ([]domain.Message, error) {
	return nil, cache.ErrCacheMiss
}
func (c *fakeCache) Set(ctx context.Context, a, b string, msgs []domain.Message, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) Invalidate(ctx context.Context, a, b string) error {
	c.invalidated++
	return nil
}
func (c *fakeCache) Close() error { return nil }

func newTestRelay(msgs *fakeMessageRepo, reqs *fakeRequestRepo, p *fakePresence) RelayService {
	return NewRelayService(msgs, reqs, p, nil, 0)
}

func TestSendMessagePersistsAndDeliversToBothParties(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	presence := newFakePresence("alice", "bob")
	svc := newTestRelay(msgs, newFakeRequestRepo(), presence)

	// When alice messages bob while both are connected
	msg, err := svc.SendMessage(context.Background(), "alice", "bob", "hello")

	// Then the message is persisted and returned
	r.NoError(err)
	r.NotEmpty(msg.ID)
	r.Len(msgs.created, 1)

	// And both parties received a receive_message event
	r.Len(presence.sinks["bob"].events, 1)
	r.Len(presence.sinks["alice"].events, 1)

	ev, ok := presence.sinks["bob"].events[0].(*domain.MessageEvent)
	r.True(ok)
	r.Equal(domain.EventReceiveMessage, ev.Type)
	r.Equal("hello", ev.Content)
}

func TestSendMessageOfflineReceiverStillSucceeds(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	presence := newFakePresence("alice") // bob offline
	svc := newTestRelay(msgs, newFakeRequestRepo(), presence)

	msg, err := svc.SendMessage(context.Background(), "alice", "bob", "hello")

	// Persistence is the only success criterion.
	r.NoError(err)
	r.NotNil(msg)
	r.Len(msgs.created, 1)
	r.Len(presence.sinks["alice"].events, 1)
}

func TestSendMessageDeliveryFailureIsSwallowed(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	presence := newFakePresence("alice", "bob")
	presence.sinks["bob"].err = context.DeadlineExceeded
	svc := newTestRelay(msgs, newFakeRequestRepo(), presence)

	// A failed push to the receiver must not fail the send or skip the
	// sender's echo.
	_, err := svc.SendMessage(context.Background(), "alice", "bob", "hello")
	r.NoError(err)
	r.Len(presence.sinks["alice"].events, 1)
}

func TestSendMessageValidation(t *testing.T) {
	r := require.New(t)
	svc := newTestRelay(newFakeMessageRepo(), newFakeRequestRepo(), newFakePresence())

	_, err := svc.SendMessage(context.Background(), "", "bob", "hello")
	r.ErrorIs(err, ErrValidation)

	_, err = svc.SendMessage(context.Background(), "alice", "", "hello")
	r.ErrorIs(err, ErrValidation)

	_, err = svc.SendMessage(context.Background(), "alice", "bob", "")
	r.ErrorIs(err, ErrValidation)
}

func TestSendMessageInvalidatesConversationCache(t *testing.T) {
	r := require.New(t)
	c := &fakeCache{}
	svc := NewRelayService(newFakeMessageRepo(), newFakeRequestRepo(), newFakePresence(), c, time.Minute)

	_, err := svc.SendMessage(context.Background(), "alice", "bob", "hello")
	r.NoError(err)
	r.Equal(1, c.invalidated)
}

func TestDeleteMessageNotifiesCounterpartyAndActor(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	presence := newFakePresence("alice", "bob")
	svc := newTestRelay(msgs, newFakeRequestRepo(), presence)

	msg, err := svc.SendMessage(context.Background(), "alice", "bob", "oops")
	r.NoError(err)

	// When alice deletes her message without naming a receiver
	err = svc.DeleteMessage(context.Background(), msg.ID, "", "alice")
	r.NoError(err)

	// Then bob (the counterparty) and alice both hear about it
	bobEvents := presence.sinks["bob"].events
	r.Len(bobEvents, 2)
	del, ok := bobEvents[1].(*domain.MessageDeletedEvent)
	r.True(ok)
	r.Equal(domain.EventMessageDeleted, del.Type)
	r.Equal(msg.ID, del.MessageID)

	r.Len(presence.sinks["alice"].events, 2)
}

func TestDeleteMessageNotFound(t *testing.T) {
	r := require.New(t)
	svc := newTestRelay(newFakeMessageRepo(), newFakeRequestRepo(), newFakePresence())

	err := svc.DeleteMessage(context.Background(), "missing", "", "alice")
	r.ErrorIs(err, repository.ErrMessageNotFound)
}

func TestMirrorMessageDoesNotPersist(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	presence := newFakePresence("alice", "bob")
	svc := newTestRelay(msgs, newFakeRequestRepo(), presence)

	svc.MirrorMessage(context.Background(), domain.Message{
		ID: "msg-1", Sender: "alice", Receiver: "bob", Content: "hi",
	})

	// Fan-out only: nothing reaches the repository.
	r.Empty(msgs.created)
	r.Len(presence.sinks["bob"].events, 1)
	r.Len(presence.sinks["alice"].events, 1)
}

func TestNotifyRequestAcceptedReachesExactlyBothParties(t *testing.T) {
	r := require.New(t)
	reqs := newFakeRequestRepo()
	presence := newFakePresence("alice", "bob", "carol")
	svc := newTestRelay(newFakeMessageRepo(), reqs, presence)

	req := &domain.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	r.NoError(reqs.Create(context.Background(), req))

	err := svc.NotifyRequestAcceptedByID(context.Background(), req.ID)
	r.NoError(err)

	// Both parties are notified with the request id, nobody else is.
	for _, user := range []string{"alice", "bob"} {
		events := presence.sinks[user].events
		r.Len(events, 1)
		ev, ok := events[0].(*domain.RequestAcceptedEvent)
		r.True(ok)
		r.Equal(req.ID, ev.RequestID)
	}
	r.Empty(presence.sinks["carol"].events)
}

func TestNotifyRequestAcceptedByIDUnknownRequest(t *testing.T) {
	r := require.New(t)
	svc := newTestRelay(newFakeMessageRepo(), newFakeRequestRepo(), newFakePresence())

	err := svc.NotifyRequestAcceptedByID(context.Background(), "missing")
	r.ErrorIs(err, repository.ErrRequestNotFound)
}

func TestListMessagesReadsThroughCache(t *testing.T) {
	r := require.New(t)
	msgs := newFakeMessageRepo()
	svc := NewRelayService(msgs, newFakeRequestRepo(), newFakePresence(), &fakeCache{}, time.Minute)

	_, err := svc.SendMessage(context.Background(), "alice", "bob", "one")
	r.NoError(err)
	_, err = svc.SendMessage(context.Background(), "bob", "alice", "two")
	r.NoError(err)

	out, err := svc.ListMessages(context.Background(), "alice", "bob")
	r.NoError(err)
	r.Len(out, 2)
}
