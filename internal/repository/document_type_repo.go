package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// DocumentTypeRepository defines data operations for the document catalog.
type DocumentTypeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.DocumentType, error)
	GetByID(ctx context.Context, id uint) (models.DocumentType, error)
	Create(ctx context.Context, docType *models.DocumentType) error
	Update(ctx context.Context, docType *models.DocumentType) error
	HasMarks(ctx context.Context, id uint) (bool, error)
}

type documentTypeRepository struct {
	db *gorm.DB
}

// NewDocumentTypeRepository instantiates the repository.
func NewDocumentTypeRepository(db *gorm.DB) DocumentTypeRepository {
	return &documentTypeRepository{db: db}
}

func (r *documentTypeRepository) List(ctx context.Context, activeOnly bool) ([]models.DocumentType, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentType{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var types []models.DocumentType
	if err := query.Order("display_order ASC").Find(&types).Error; err != nil {
		return nil, err
	}

	return types, nil
}

func (r *documentTypeRepository) GetByID(ctx context.Context, id uint) (models.DocumentType, error) {
	var docType models.DocumentType
	if err := r.db.WithContext(ctx).First(&docType, id).Error; err != nil {
		return models.DocumentType{}, err
	}

	return docType, nil
}

func (r *documentTypeRepository) Create(ctx context.Context, docType *models.DocumentType) error {
	return r.db.WithContext(ctx).Create(docType).Error
}

func (r *documentTypeRepository) Update(ctx context.Context, docType *models.DocumentType) error {
	return r.db.WithContext(ctx).Save(docType).Error
}

// HasMarks reports whether any marks already reference submissions of this
// document type. Weight edits are refused once marks exist.
func (r *documentTypeRepository) HasMarks(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupervisorMarks{}).
		Joins("JOIN document_submissions ON document_submissions.id = supervisor_marks.submission_id").
		Where("document_submissions.document_type_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.EvaluationMarks{}).
		Joins("JOIN document_submissions ON document_submissions.id = evaluation_marks.submission_id").
		Where("document_submissions.document_type_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
