package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farizks7575/chat-app/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-backed message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a message, assigning its id and timestamp.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	model := domain.MessageModel{
		ID:         uuid.New().String(),
		SenderID:   msg.Sender,
		ReceiverID: msg.Receiver,
		Content:    msg.Content,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	msg.ID = model.ID
	msg.Timestamp = model.CreatedAt
	return nil
}

// FindBetween returns all messages exchanged between two users, oldest
// first. Timestamps from a single process are close together, so the id is
// used as a tiebreak to keep the order stable.
func (r *GormMessageRepository) FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at asc, id asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.Message, 0, len(models))
	for i := range models {
		msgs = append(msgs, *models[i].ToDomain())
	}
	return msgs, nil
}

// Delete hard-deletes a message by id and returns the deleted record.
// Deleting an unknown or already-deleted id fails with ErrMessageNotFound.
func (r *GormMessageRepository) Delete(ctx context.Context, id string) (*domain.Message, error) {
	var deleted *domain.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.MessageModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}

		if err := tx.Delete(&domain.MessageModel{}, "id = ?", id).Error; err != nil {
			return err
		}

		deleted = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

var _ MessageRepository = (*GormMessageRepository)(nil)
