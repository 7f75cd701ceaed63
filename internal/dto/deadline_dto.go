package dto

import (
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// DeadlineEntry pairs a document type with its due date.
type DeadlineEntry struct {
	DocumentTypeID uint      `json:"document_type_id" validate:"required,gt=0"`
	Date           time.Time `json:"date" validate:"required"`
}

// SetDeadlinesRequest replaces a batch's deadline schedule.
type SetDeadlinesRequest struct {
	Entries []DeadlineEntry `json:"entries" validate:"required,min=1,dive"`
}

// DeadlineResponse serializes one scheduled deadline.
type DeadlineResponse struct {
	ID               uint      `json:"id"`
	BatchID          uint      `json:"batch_id"`
	DocumentTypeID   uint      `json:"document_type_id"`
	DocumentTypeCode string    `json:"document_type_code,omitempty"`
	DeadlineDate     time.Time `json:"deadline_date"`
	SortOrder        int       `json:"sort_order"`
}

// DeadlineScanResponse summarizes an approaching-deadline sweep.
type DeadlineScanResponse struct {
	Scanned     int `json:"scanned"`
	Approaching int `json:"approaching"`
	WindowHours int `json:"window_hours"`
}

// NewDeadlineResponse converts a ProjectDeadline model into a DTO.
func NewDeadlineResponse(model models.ProjectDeadline) DeadlineResponse {
	response := DeadlineResponse{
		ID:             model.ID,
		BatchID:        model.BatchID,
		DocumentTypeID: model.DocumentTypeID,
		DeadlineDate:   model.DeadlineDate,
		SortOrder:      model.SortOrder,
	}
	if model.DocumentType.ID != 0 {
		response.DocumentTypeCode = model.DocumentType.Code
	}
	return response
}

// NewDeadlineResponseSlice converts deadline models into DTOs.
func NewDeadlineResponseSlice(deadlines []models.ProjectDeadline) []DeadlineResponse {
	responses := make([]DeadlineResponse, 0, len(deadlines))
	for _, deadline := range deadlines {
		responses = append(responses, NewDeadlineResponse(deadline))
	}
	return responses
}
