package dto

import (
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for a document
// upload.
type SubmissionCreateRequest struct {
	ProjectID      uint `form:"project_id" validate:"required,gt=0"`
	DocumentTypeID uint `form:"document_type_id" validate:"required,gt=0"`
}

// SubmissionReviewRequest carries the supervisor's verdict.
type SubmissionReviewRequest struct {
	Approve  bool   `json:"approve"`
	Feedback string `json:"feedback" validate:"omitempty,max=4000"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint              `json:"id"`
	ProjectID      uint              `json:"project_id"`
	DocumentTypeID uint              `json:"document_type_id"`
	Status         string            `json:"status"`
	UploadedBy     uint              `json:"uploaded_by"`
	FileReference  string            `json:"file_reference"`
	FileURL        string            `json:"file_url"`
	Comments       string            `json:"comments"`
	IsFinal        bool              `json:"is_final"`
	SupersedesID   *uint             `json:"supersedes_id"`
	ReviewedBy     *uint             `json:"reviewed_by"`
	ReviewedAt     *time.Time        `json:"reviewed_at"`
	LockedBy       *uint             `json:"locked_by"`
	LockedAt       *time.Time        `json:"locked_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DocumentType   DocumentTypeLite  `json:"document_type"`
}

// DocumentTypeLite summarizes a document type inside submission responses.
type DocumentTypeLite struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// NewSubmissionResponse converts a DocumentSubmission model into a DTO.
func NewSubmissionResponse(model models.DocumentSubmission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		ProjectID:      model.ProjectID,
		DocumentTypeID: model.DocumentTypeID,
		Status:         model.Status,
		UploadedBy:     model.UploadedBy,
		FileReference:  model.FileReference,
		FileURL:        model.FileURL,
		Comments:       model.Comments,
		IsFinal:        model.IsFinal,
		SupersedesID:   model.SupersedesID,
		ReviewedBy:     model.ReviewedBy,
		ReviewedAt:     model.ReviewedAt,
		LockedBy:       model.LockedBy,
		LockedAt:       model.LockedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	if model.DocumentType.ID != 0 {
		response.DocumentType = DocumentTypeLite{
			ID:    model.DocumentType.ID,
			Code:  model.DocumentType.Code,
			Title: model.DocumentType.Title,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.DocumentSubmission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
