package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// DeadlineRepository defines data operations for deadline batches.
type DeadlineRepository interface {
	GetBatch(ctx context.Context, batchID uint) (models.DeadlineBatch, error)
	ListByBatch(ctx context.Context, batchID uint) ([]models.ProjectDeadline, error)
	ReplaceForBatch(ctx context.Context, batchID uint, entries []models.ProjectDeadline) error
	ListAll(ctx context.Context) ([]models.ProjectDeadline, error)
}

type deadlineRepository struct {
	db *gorm.DB
}

// NewDeadlineRepository instantiates the repository.
func NewDeadlineRepository(db *gorm.DB) DeadlineRepository {
	return &deadlineRepository{db: db}
}

func (r *deadlineRepository) GetBatch(ctx context.Context, batchID uint) (models.DeadlineBatch, error) {
	var batch models.DeadlineBatch
	if err := r.db.WithContext(ctx).Preload("Deadlines").First(&batch, batchID).Error; err != nil {
		return models.DeadlineBatch{}, err
	}

	return batch, nil
}

func (r *deadlineRepository) ListByBatch(ctx context.Context, batchID uint) ([]models.ProjectDeadline, error) {
	var deadlines []models.ProjectDeadline
	if err := r.db.WithContext(ctx).
		Preload("DocumentType").
		Where("batch_id = ?", batchID).
		Order("sort_order ASC").
		Find(&deadlines).Error; err != nil {
		return nil, err
	}

	return deadlines, nil
}

// ReplaceForBatch swaps the batch's deadline entries in one transaction so a
// partially-applied schedule is never observable.
func (r *deadlineRepository) ReplaceForBatch(ctx context.Context, batchID uint, entries []models.ProjectDeadline) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&models.ProjectDeadline{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *deadlineRepository) ListAll(ctx context.Context) ([]models.ProjectDeadline, error) {
	var deadlines []models.ProjectDeadline
	if err := r.db.WithContext(ctx).
		Preload("DocumentType").
		Order("deadline_date ASC").
		Find(&deadlines).Error; err != nil {
		return nil, err
	}

	return deadlines, nil
}
