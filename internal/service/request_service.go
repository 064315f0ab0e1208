package service

import (
	"context"
	"errors"

	"github.com/farizks7575/chat-app/internal/audit"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/repository"
	"github.com/farizks7575/chat-app/pkg/log"
)

type requestService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
	relay    RelayService
}

// NewRequestService creates the friend-request service.
func NewRequestService(requests repository.RequestRepository, users repository.UserRepository, relay RelayService) RequestService {
	return &requestService{requests: requests, users: users, relay: relay}
}

// SendRequest creates a pending request from sender to receiver and notifies
// the receiver's live connection. The repository rejects duplicate pending
// requests and already-connected pairs in either direction.
func (s *requestService) SendRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequest, error) {
	if receiverID == "" {
		return nil, ErrValidation
	}
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	req := &domain.FriendRequest{SenderID: senderID, ReceiverID: receiverID}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.relay.NotifyRequestCreated(ctx, req)

	audit.LogWithDetail(ctx, audit.ActionSendRequest, senderID, req.ID, "friend request sent")
	return req, nil
}

// ListPending returns the receiver's pending requests with each sender's
// public profile attached. A sender whose account vanished is skipped rather
// than failing the whole listing.
func (s *requestService) ListPending(ctx context.Context, receiverID string) ([]domain.PendingRequest, error) {
	reqs, err := s.requests.FindPendingFor(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PendingRequest, 0, len(reqs))
	for i := range reqs {
		sender, err := s.users.GetByID(ctx, reqs[i].SenderID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				log.Ctx(ctx).Warn().
					Str(log.FieldFriendReq, reqs[i].ID).
					Str(log.FieldSenderID, reqs[i].SenderID).
					Msg("pending request references missing sender")
				continue
			}
			return nil, err
		}
		out = append(out, domain.PendingRequest{
			FriendRequest: reqs[i],
			Sender:        sender.ToResponse(),
		})
	}
	return out, nil
}

// UpdateStatus resolves a pending request exactly once. Acceptance notifies
// both parties; a decline is silent.
func (s *requestService) UpdateStatus(ctx context.Context, requestID, status string) (*domain.FriendRequest, error) {
	req, err := s.requests.UpdateStatus(ctx, requestID, status)
	if err != nil {
		return nil, err
	}

	if req.Status == domain.StatusAccepted {
		s.relay.NotifyRequestAccepted(ctx, req)
	}

	audit.LogWithDetail(ctx, audit.ActionResolveRequest, req.ReceiverID, req.ID, "friend request "+req.Status)
	return req, nil
}

// ListAccepted returns the user's contacts: the counterparty of every
// accepted request the user is part of.
func (s *requestService) ListAccepted(ctx context.Context, userID string) ([]domain.Contact, error) {
	reqs, err := s.requests.FindAcceptedFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Contact, 0, len(reqs))
	for i := range reqs {
		otherID := reqs[i].Counterparty(userID)
		other, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				log.Ctx(ctx).Warn().
					Str(log.FieldFriendReq, reqs[i].ID).
					Str(log.FieldUserID, otherID).
					Msg("accepted request references missing user")
				continue
			}
			return nil, err
		}
		out = append(out, domain.Contact{
			ID:    other.ID,
			Name:  other.Name,
			Image: other.Image,
		})
	}
	return out, nil
}
