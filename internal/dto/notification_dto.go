package dto

import (
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// NotificationResponse serializes one persisted notification.
type NotificationResponse struct {
	ID          uint                   `json:"id"`
	RecipientID uint                   `json:"recipient_id"`
	Kind        string                 `json:"kind"`
	Message     string                 `json:"message"`
	Payload     map[string]interface{} `json:"payload"`
	Read        bool                   `json:"read"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a Notification model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          model.ID,
		RecipientID: model.RecipientID,
		Kind:        model.Kind,
		Message:     model.Message,
		Payload:     model.Payload,
		Read:        model.Read,
		CreatedAt:   model.CreatedAt,
	}
}
