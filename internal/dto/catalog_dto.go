package dto

import (
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// DocumentTypeCreateRequest describes the payload for a new catalog entry.
type DocumentTypeCreateRequest struct {
	Code             string  `json:"code" validate:"required,min=2,max=32"`
	Title            string  `json:"title" validate:"required,min=3,max=255"`
	SupervisorWeight float64 `json:"supervisor_weight" validate:"gte=0,lte=100"`
	CommitteeWeight  float64 `json:"committee_weight" validate:"gte=0,lte=100"`
	DisplayOrder     int     `json:"display_order" validate:"gte=0"`
}

// DocumentTypeUpdateRequest describes a partial catalog update.
type DocumentTypeUpdateRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=3,max=255"`
	SupervisorWeight *float64 `json:"supervisor_weight" validate:"omitempty,gte=0,lte=100"`
	CommitteeWeight  *float64 `json:"committee_weight" validate:"omitempty,gte=0,lte=100"`
	DisplayOrder     *int     `json:"display_order" validate:"omitempty,gte=0"`
}

// DocumentTypeResponse serializes a catalog entry.
type DocumentTypeResponse struct {
	ID               uint      `json:"id"`
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	SupervisorWeight float64   `json:"supervisor_weight"`
	CommitteeWeight  float64   `json:"committee_weight"`
	DisplayOrder     int       `json:"display_order"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewDocumentTypeResponse converts a DocumentType model into a DTO.
func NewDocumentTypeResponse(model models.DocumentType) DocumentTypeResponse {
	return DocumentTypeResponse{
		ID:               model.ID,
		Code:             model.Code,
		Title:            model.Title,
		SupervisorWeight: model.SupervisorWeight,
		CommitteeWeight:  model.CommitteeWeight,
		DisplayOrder:     model.DisplayOrder,
		Active:           model.Active,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// NewDocumentTypeResponseSlice converts catalog models into DTOs.
func NewDocumentTypeResponseSlice(types []models.DocumentType) []DocumentTypeResponse {
	responses := make([]DocumentTypeResponse, 0, len(types))
	for _, docType := range types {
		responses = append(responses, NewDocumentTypeResponse(docType))
	}
	return responses
}
