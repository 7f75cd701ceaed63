package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// ResultRepository defines data operations for final results.
type ResultRepository interface {
	GetByProject(ctx context.Context, projectID uint) (models.FinalResult, error)
	Upsert(ctx context.Context, result *models.FinalResult) error
	Release(ctx context.Context, projectID, actorID uint, releasedAt time.Time) (models.FinalResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) GetByProject(ctx context.Context, projectID uint) (models.FinalResult, error) {
	var result models.FinalResult
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(&result).Error; err != nil {
		return models.FinalResult{}, err
	}

	return result, nil
}

// Upsert writes the recomputed breakdown under a row lock so concurrent
// recomputes for the same project serialize instead of interleaving. The
// released flag and release metadata survive recomputes untouched.
func (r *resultRepository) Upsert(ctx context.Context, result *models.FinalResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FinalResult
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", result.ProjectID).
			First(&existing).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return tx.Create(result).Error
			}
			return err
		}

		existing.TotalScore = result.TotalScore
		existing.Breakdown = result.Breakdown
		existing.ComputedBy = result.ComputedBy
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		*result = existing
		return nil
	})
}

// Release marks the result visible. Releasing an already-released result is a
// no-op returning the original release timestamp.
func (r *resultRepository) Release(ctx context.Context, projectID, actorID uint, releasedAt time.Time) (models.FinalResult, error) {
	var result models.FinalResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", projectID).
			First(&result).Error; err != nil {
			return err
		}

		if result.Released {
			return nil
		}

		result.Released = true
		result.ReleasedAt = &releasedAt
		result.ComputedBy = &actorID
		return tx.Save(&result).Error
	})
	if err != nil {
		return models.FinalResult{}, err
	}

	return result, nil
}
