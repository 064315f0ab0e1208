package service

import (
	"context"
	"errors"
	"time"

	"github.com/farizks7575/chat-app/internal/audit"
	"github.com/farizks7575/chat-app/internal/cache"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/hub"
	"github.com/farizks7575/chat-app/internal/repository"
	"github.com/farizks7575/chat-app/pkg/log"
)

// relayService is stateless over (presence snapshot, event, persisted
// record): it persists through the repositories and fans out through the
// presence registry, which it never mutates.
type relayService struct {
	messages repository.MessageRepository
	requests repository.RequestRepository
	presence hub.Presence
	cache    cache.ConversationCache // nil disables caching
	cacheTTL time.Duration
}

// NewRelayService creates the delivery relay.
func NewRelayService(
	messages repository.MessageRepository,
	requests repository.RequestRepository,
	presence hub.Presence,
	conversations cache.ConversationCache,
	cacheTTL time.Duration,
) RelayService {
	return &relayService{
		messages: messages,
		requests: requests,
		presence: presence,
		cache:    conversations,
		cacheTTL: cacheTTL,
	}
}

// deliver pushes an event at a user's live connection, if any. Absence of a
// connection and write failures are both degraded outcomes, never errors:
// the party will see the record on its next fetch.
func (s *relayService) deliver(userID string, event interface{}) {
	if userID == "" {
		return
	}
	sink, ok := s.presence.Lookup(userID)
	if !ok {
		return
	}
	if err := sink.SendEvent(event); err != nil {
		log.L().Warn().Err(err).Str(log.FieldUserID, userID).Msg("event delivery failed")
	}
}

// SendMessage persists a message and fans it out. The receiver's and the
// sender's deliveries are independent: either party being offline does not
// affect the other, and neither affects the returned ack.
func (s *relayService) SendMessage(ctx context.Context, sender, receiver, content string) (*domain.Message, error) {
	if sender == "" || receiver == "" || content == "" {
		return nil, ErrValidation
	}

	msg := &domain.Message{
		Sender:   sender,
		Receiver: receiver,
		Content:  content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.invalidateConversation(ctx, sender, receiver)

	// The presence registry may have changed while the persistence call was
	// in flight; deliver against its current state.
	event := &domain.MessageEvent{Type: domain.EventReceiveMessage, Message: *msg}
	s.deliver(receiver, event)
	s.deliver(sender, event)

	audit.Log(ctx, audit.ActionSendMessage, sender, "message sent")
	return msg, nil
}

// ListMessages returns the conversation between two users, oldest first,
// reading through the conversation cache when one is configured.
func (s *relayService) ListMessages(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if s.cache != nil {
		msgs, err := s.cache.Get(ctx, userA, userB)
		if err == nil {
			return msgs, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Ctx(ctx).Warn().Err(err).Msg("conversation cache read failed")
		}
	}

	msgs, err := s.messages.FindBetween(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userA, userB, msgs, s.cacheTTL); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("conversation cache write failed")
		}
	}
	return msgs, nil
}

// DeleteMessage hard-deletes a message and announces the deletion to the
// receiver and to the initiating actor. The actor comes from the
// authenticated ingress, never from a client-supplied sender field.
func (s *relayService) DeleteMessage(ctx context.Context, messageID, receiver, actorID string) error {
	deleted, err := s.messages.Delete(ctx, messageID)
	if err != nil {
		return err
	}

	s.invalidateConversation(ctx, deleted.Sender, deleted.Receiver)

	target := receiver
	if target == "" {
		target = deletedCounterparty(deleted, actorID)
	}

	event := &domain.MessageDeletedEvent{Type: domain.EventMessageDeleted, MessageID: messageID}
	s.deliver(target, event)
	if actorID != target {
		s.deliver(actorID, event)
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteMessage, actorID, messageID, "message deleted")
	return nil
}

// MirrorMessage fans out an already-persisted message without persisting
// again. Clients deduplicate by message id, so at-least-once delivery from
// the two coexisting ingress paths is fine.
func (s *relayService) MirrorMessage(ctx context.Context, msg domain.Message) {
	if msg.Sender == "" && msg.Receiver == "" {
		return
	}

	event := &domain.MessageEvent{Type: domain.EventReceiveMessage, Message: msg}
	s.deliver(msg.Receiver, event)
	s.deliver(msg.Sender, event)
}

// MirrorDelete fans out a deletion announcement without touching storage.
func (s *relayService) MirrorDelete(ctx context.Context, messageID, receiver, actorID string) {
	if messageID == "" {
		return
	}

	event := &domain.MessageDeletedEvent{Type: domain.EventMessageDeleted, MessageID: messageID}
	s.deliver(receiver, event)
	if actorID != receiver {
		s.deliver(actorID, event)
	}
}

// NotifyRequestCreated tells the receiver a pending request landed.
func (s *relayService) NotifyRequestCreated(ctx context.Context, req *domain.FriendRequest) {
	s.deliver(req.ReceiverID, &domain.NewRequestEvent{
		Type:       domain.EventNewRequest,
		RequestID:  req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Message:    "You have a new friend request!",
	})
}

// NotifyRequestAccepted tells exactly the two parties of a request that it
// reached accepted state.
func (s *relayService) NotifyRequestAccepted(ctx context.Context, req *domain.FriendRequest) {
	event := &domain.RequestAcceptedEvent{Type: domain.EventRequestAccepted, RequestID: req.ID}
	s.deliver(req.SenderID, event)
	s.deliver(req.ReceiverID, event)
}

// NotifyRequestAcceptedByID resolves the request id and notifies its two
// parties. Used by the socket mirror, which must name a request: there is
// no broadcast path.
func (s *relayService) NotifyRequestAcceptedByID(ctx context.Context, requestID string) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	s.NotifyRequestAccepted(ctx, req)
	return nil
}

func (s *relayService) invalidateConversation(ctx context.Context, userA, userB string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userA, userB); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("conversation cache invalidation failed")
	}
}

func deletedCounterparty(msg *domain.Message, actorID string) string {
	if msg.Sender == actorID {
		return msg.Receiver
	}
	return msg.Sender
}
