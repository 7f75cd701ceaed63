package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// EventKind enumerates the logical events the core emits to the notification
// collaborator.
type EventKind string

const (
	EventSubmissionReviewed  EventKind = "submission_reviewed"
	EventSubmissionLocked    EventKind = "submission_locked"
	EventResultReleased      EventKind = "result_released"
	EventDeadlineApproaching EventKind = "deadline_approaching"
)

// Notification is the persisted form of an emitted event, one row per
// recipient.
type Notification struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	RecipientID uint              `gorm:"not null;index" json:"recipient_id"`
	Kind        string            `gorm:"size:64;not null" json:"kind"`
	Message     string            `gorm:"type:text" json:"message"`
	Payload     datatypes.JSONMap `gorm:"type:json" json:"payload"`
	Read        bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SubmissionReviewedPayload accompanies EventSubmissionReviewed.
type SubmissionReviewedPayload struct {
	ProjectID      uint   `json:"project_id"`
	ProjectTitle   string `json:"project_title"`
	DocumentType   string `json:"document_type"`
	SubmissionID   uint   `json:"submission_id"`
	Approved       bool   `json:"approved"`
	Feedback       string `json:"feedback,omitempty"`
}

// SubmissionLockedPayload accompanies EventSubmissionLocked.
type SubmissionLockedPayload struct {
	ProjectID    uint   `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	DocumentType string `json:"document_type"`
	SubmissionID uint   `json:"submission_id"`
}

// ResultReleasedPayload accompanies EventResultReleased.
type ResultReleasedPayload struct {
	ProjectID    uint    `json:"project_id"`
	ProjectTitle string  `json:"project_title"`
	TotalScore   float64 `json:"total_score"`
}

// DeadlineApproachingPayload accompanies EventDeadlineApproaching.
type DeadlineApproachingPayload struct {
	ProjectID    uint      `json:"project_id,omitempty"`
	ProjectTitle string    `json:"project_title,omitempty"`
	DocumentType string    `json:"document_type"`
	DeadlineDate time.Time `json:"deadline_date"`
}

// Event is the tagged union handed to the notification collaborator. Exactly
// one payload field matching Kind is set.
type Event struct {
	Kind       EventKind
	Recipients []uint

	SubmissionReviewed  *SubmissionReviewedPayload
	SubmissionLocked    *SubmissionLockedPayload
	ResultReleased      *ResultReleasedPayload
	DeadlineApproaching *DeadlineApproachingPayload
}

// PayloadMap flattens the active payload into a JSON map for persistence and
// publication. It fails when the payload does not match the event kind.
func (e Event) PayloadMap() (datatypes.JSONMap, error) {
	var payload interface{}
	switch e.Kind {
	case EventSubmissionReviewed:
		payload = e.SubmissionReviewed
	case EventSubmissionLocked:
		payload = e.SubmissionLocked
	case EventResultReleased:
		payload = e.ResultReleased
	case EventDeadlineApproaching:
		payload = e.DeadlineApproaching
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}

	if payload == nil || isNilPointer(payload) {
		return nil, fmt.Errorf("event %q is missing its payload", e.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}

	out := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return out, nil
}

func isNilPointer(v interface{}) bool {
	switch p := v.(type) {
	case *SubmissionReviewedPayload:
		return p == nil
	case *SubmissionLockedPayload:
		return p == nil
	case *ResultReleasedPayload:
		return p == nil
	case *DeadlineApproachingPayload:
		return p == nil
	default:
		return false
	}
}
