package dto

import (
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// SupervisorMarksRequest carries the supervisor's score for a locked
// submission.
type SupervisorMarksRequest struct {
	Score float64 `json:"score" validate:"gte=0,lte=100"`
}

// EvaluationMarksRequest carries one evaluator's score. Finalize commits the
// entry, excluding it from further edits by that evaluator.
type EvaluationMarksRequest struct {
	Score    float64 `json:"score" validate:"gte=0,lte=100"`
	Finalize bool    `json:"finalize"`
}

// SupervisorMarksResponse serializes supervisor marks.
type SupervisorMarksResponse struct {
	SubmissionID uint      `json:"submission_id"`
	SupervisorID uint      `json:"supervisor_id"`
	Score        float64   `json:"score"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EvaluationMarksResponse serializes one evaluator's marks.
type EvaluationMarksResponse struct {
	SubmissionID uint       `json:"submission_id"`
	EvaluatorID  uint       `json:"evaluator_id"`
	Score        float64    `json:"score"`
	IsFinal      bool       `json:"is_final"`
	FinalizedAt  *time.Time `json:"finalized_at"`
}

// EvaluationSummary is the derived evaluation state of one submission. The
// committee average reflects finalized entries only.
type EvaluationSummary struct {
	SubmissionID        uint     `json:"submission_id"`
	RequiredEvaluators  int      `json:"required_evaluators"`
	ActualEvaluators    int      `json:"actual_evaluators"`
	FinalizedEvaluators int      `json:"finalized_evaluators"`
	CommitteeAverage    float64  `json:"committee_average"`
	SupervisorScore     *float64 `json:"supervisor_score"`
	HasSupervisorMarks  bool     `json:"has_supervisor_marks"`
	Complete            bool     `json:"complete"`
}

// NewSupervisorMarksResponse converts a SupervisorMarks model into a DTO.
func NewSupervisorMarksResponse(model models.SupervisorMarks) SupervisorMarksResponse {
	return SupervisorMarksResponse{
		SubmissionID: model.SubmissionID,
		SupervisorID: model.SupervisorID,
		Score:        model.Score,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewEvaluationMarksResponse converts an EvaluationMarks model into a DTO.
func NewEvaluationMarksResponse(model models.EvaluationMarks) EvaluationMarksResponse {
	return EvaluationMarksResponse{
		SubmissionID: model.SubmissionID,
		EvaluatorID:  model.EvaluatorID,
		Score:        model.Score,
		IsFinal:      model.IsFinal,
		FinalizedAt:  model.FinalizedAt,
	}
}
