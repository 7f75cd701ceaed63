package models

import "time"

// SupervisorMarks holds the single supervisor score for a locked submission.
// Re-submission overwrites the row; only the latest supervisor mark counts.
type SupervisorMarks struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex" json:"submission_id"`
	SupervisorID uint      `gorm:"not null" json:"supervisor_id"`
	Score        float64   `gorm:"not null" json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EvaluationMarks holds one committee evaluator's score for a locked
// submission. Each evaluator owns exactly one row per submission; IsFinal
// distinguishes a committed score from a draft that is excluded from averages.
type EvaluationMarks struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex:idx_submission_evaluator" json:"submission_id"`
	EvaluatorID  uint      `gorm:"not null;uniqueIndex:idx_submission_evaluator" json:"evaluator_id"`
	Score        float64   `gorm:"not null" json:"score"`
	IsFinal      bool      `gorm:"not null;default:false" json:"is_final"`
	FinalizedAt  *time.Time `json:"finalized_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
