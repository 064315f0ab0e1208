package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farizks7575/chat-app/internal/domain"
)

// GormRequestRepository implements RequestRepository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GORM-backed request repository.
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// Create inserts a pending request. Inside one transaction it rejects a
// second pending request for the unordered (sender, receiver) pair with
// ErrDuplicatePending, and any insert for a pair that already has an
// accepted relationship with ErrAlreadyConnected.
func (r *GormRequestRepository) Create(ctx context.Context, req *domain.FriendRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.RequestModel{}).
			Where("status = ?", domain.StatusPending).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				req.SenderID, req.ReceiverID, req.ReceiverID, req.SenderID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicatePending
		}

		err = tx.Model(&domain.RequestModel{}).
			Where("status = ?", domain.StatusAccepted).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				req.SenderID, req.ReceiverID, req.ReceiverID, req.SenderID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyConnected
		}

		model := domain.RequestModel{
			ID:         uuid.New().String(),
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			Status:     domain.StatusPending,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		req.ID = model.ID
		req.Status = model.Status
		req.CreatedAt = model.CreatedAt
		req.UpdatedAt = model.UpdatedAt
		return nil
	})
}

// GetByID retrieves a request by id.
func (r *GormRequestRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	var model domain.RequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateStatus resolves a pending request to accepted or declined. The
// transition happens exactly once: resolving an already-resolved request
// fails with ErrRequestResolved, an unknown id with ErrRequestNotFound.
func (r *GormRequestRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.FriendRequest, error) {
	if status != domain.StatusAccepted && status != domain.StatusDeclined {
		return nil, ErrInvalidStatus
	}

	var updated *domain.FriendRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.RequestModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if model.Status != domain.StatusPending {
			return ErrRequestResolved
		}

		if err := tx.Model(&model).Update("status", status).Error; err != nil {
			return err
		}

		model.Status = status
		updated = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindPendingFor returns the pending requests addressed to receiverID,
// oldest first.
func (r *GormRequestRepository) FindPendingFor(ctx context.Context, receiverID string) ([]domain.FriendRequest, error) {
	var models []domain.RequestModel
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, domain.StatusPending).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainRequests(models), nil
}

// FindAcceptedFor returns the accepted relationships userID is part of, on
// either side.
func (r *GormRequestRepository) FindAcceptedFor(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	var models []domain.RequestModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)",
			domain.StatusAccepted, userID, userID).
		Order("updated_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainRequests(models), nil
}

func toDomainRequests(models []domain.RequestModel) []domain.FriendRequest {
	reqs := make([]domain.FriendRequest, 0, len(models))
	for i := range models {
		reqs = append(reqs, *models[i].ToDomain())
	}
	return reqs
}

var _ RequestRepository = (*GormRequestRepository)(nil)
