package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// MarksRepository defines data operations for supervisor and committee marks.
type MarksRepository interface {
	UpsertSupervisor(ctx context.Context, marks *models.SupervisorMarks) error
	GetSupervisor(ctx context.Context, submissionID uint) (models.SupervisorMarks, error)
	UpsertEvaluation(ctx context.Context, marks *models.EvaluationMarks) error
	GetEvaluation(ctx context.Context, submissionID, evaluatorID uint) (models.EvaluationMarks, error)
	ListEvaluations(ctx context.Context, submissionID uint) ([]models.EvaluationMarks, error)
}

type marksRepository struct {
	db *gorm.DB
}

// NewMarksRepository instantiates the repository.
func NewMarksRepository(db *gorm.DB) MarksRepository {
	return &marksRepository{db: db}
}

func (r *marksRepository) UpsertSupervisor(ctx context.Context, marks *models.SupervisorMarks) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"supervisor_id", "score", "updated_at"}),
	}).Create(marks).Error
}

func (r *marksRepository) GetSupervisor(ctx context.Context, submissionID uint) (models.SupervisorMarks, error) {
	var marks models.SupervisorMarks
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&marks).Error; err != nil {
		return models.SupervisorMarks{}, err
	}

	return marks, nil
}

func (r *marksRepository) UpsertEvaluation(ctx context.Context, marks *models.EvaluationMarks) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "evaluator_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "is_final", "finalized_at", "updated_at"}),
	}).Create(marks).Error
}

func (r *marksRepository) GetEvaluation(ctx context.Context, submissionID, evaluatorID uint) (models.EvaluationMarks, error) {
	var marks models.EvaluationMarks
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Where("evaluator_id = ?", evaluatorID).
		First(&marks).Error; err != nil {
		return models.EvaluationMarks{}, err
	}

	return marks, nil
}

func (r *marksRepository) ListEvaluations(ctx context.Context, submissionID uint) ([]models.EvaluationMarks, error) {
	var marks []models.EvaluationMarks
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("evaluator_id ASC").
		Find(&marks).Error; err != nil {
		return nil, err
	}

	return marks, nil
}
