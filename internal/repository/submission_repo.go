package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// SubmissionRepository defines data operations for document submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.DocumentSubmission, error)
	GetCurrent(ctx context.Context, projectID, documentTypeID uint) (models.DocumentSubmission, error)
	CountActive(ctx context.Context, projectID, documentTypeID uint) (int64, error)
	HasApproved(ctx context.Context, projectID, documentTypeID uint) (bool, error)
	Create(ctx context.Context, submission *models.DocumentSubmission) error
	Update(ctx context.Context, submission *models.DocumentSubmission) error
	LockCAS(ctx context.Context, id, lockedBy uint, lockedAt time.Time) (bool, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.DocumentSubmission, error)
	Lineage(ctx context.Context, id uint) ([]models.DocumentSubmission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.DocumentSubmission{}).
		Preload("DocumentType").
		Preload("Project").
		Preload("Project.Members")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.DocumentSubmission, error) {
	var submission models.DocumentSubmission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.DocumentSubmission{}, err
	}

	return submission, nil
}

// GetCurrent returns the newest submission row for the pair; superseded
// revisions sort below it.
func (r *submissionRepository) GetCurrent(ctx context.Context, projectID, documentTypeID uint) (models.DocumentSubmission, error) {
	var submission models.DocumentSubmission
	if err := r.baseQuery(ctx).
		Where("project_id = ?", projectID).
		Where("document_type_id = ?", documentTypeID).
		Order("created_at DESC").
		First(&submission).Error; err != nil {
		return models.DocumentSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) CountActive(ctx context.Context, projectID, documentTypeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DocumentSubmission{}).
		Where("project_id = ?", projectID).
		Where("document_type_id = ?", documentTypeID).
		Where("status IN ?", models.ActiveSubmissionStatuses).
		Count(&count).Error

	return count, err
}

func (r *submissionRepository) HasApproved(ctx context.Context, projectID, documentTypeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DocumentSubmission{}).
		Where("project_id = ?", projectID).
		Where("document_type_id = ?", documentTypeID).
		Where("status IN ?", []string{models.SubmissionStatusApproved, models.SubmissionStatusLocked}).
		Count(&count).Error

	return count > 0, err
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.DocumentSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.DocumentSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// LockCAS flips the submission to locked with a compare-and-swap on the
// current status, so exactly one of two concurrent lockers wins. Returns
// false when the guard did not match.
func (r *submissionRepository) LockCAS(ctx context.Context, id, lockedBy uint, lockedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.DocumentSubmission{}).
		Where("id = ?", id).
		Where("status = ?", models.SubmissionStatusApproved).
		Where("is_final = ?", true).
		Updates(map[string]interface{}{
			"status":    models.SubmissionStatusLocked,
			"locked_by": lockedBy,
			"locked_at": lockedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *submissionRepository) ListByProject(ctx context.Context, projectID uint) ([]models.DocumentSubmission, error) {
	var submissions []models.DocumentSubmission
	if err := r.baseQuery(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// Lineage walks the supersedes chain from the given submission back to the
// original upload, newest first.
func (r *submissionRepository) Lineage(ctx context.Context, id uint) ([]models.DocumentSubmission, error) {
	var chain []models.DocumentSubmission
	next := &id
	for next != nil {
		var submission models.DocumentSubmission
		if err := r.db.WithContext(ctx).Preload("DocumentType").First(&submission, *next).Error; err != nil {
			return nil, err
		}
		chain = append(chain, submission)
		next = submission.SupersedesID
	}

	return chain, nil
}
