package dto

import (
	"encoding/json"
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// DocumentScoreResponse is one entry of the final result breakdown.
type DocumentScoreResponse struct {
	DocumentTypeID    uint    `json:"document_type_id"`
	DocumentTypeCode  string  `json:"document_type_code"`
	SupervisorScore   float64 `json:"supervisor_score"`
	SupervisorWeight  float64 `json:"supervisor_weight"`
	CommitteeAvgScore float64 `json:"committee_avg_score"`
	CommitteeWeight   float64 `json:"committee_weight"`
	EvaluatorCount    int     `json:"evaluator_count"`
	WeightedScore     float64 `json:"weighted_score"`
}

// FinalResultResponse serializes a project's aggregated result.
type FinalResultResponse struct {
	ProjectID  uint                    `json:"project_id"`
	TotalScore float64                 `json:"total_score"`
	Breakdown  []DocumentScoreResponse `json:"breakdown"`
	Released   bool                    `json:"released"`
	ReleasedAt *time.Time              `json:"released_at"`
	ComputedBy *uint                   `json:"computed_by"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// ComputeOutcome is the result of a ComputeIfReady call. Ready=false with a
// populated Missing list is the legitimate not-ready status, not an error.
type ComputeOutcome struct {
	Ready   bool                 `json:"ready"`
	Missing []string             `json:"missing,omitempty"`
	Result  *FinalResultResponse `json:"result,omitempty"`
}

// NewFinalResultResponse converts a FinalResult model into a DTO.
func NewFinalResultResponse(model models.FinalResult) FinalResultResponse {
	response := FinalResultResponse{
		ProjectID:  model.ProjectID,
		TotalScore: model.TotalScore,
		Released:   model.Released,
		ReleasedAt: model.ReleasedAt,
		ComputedBy: model.ComputedBy,
		UpdatedAt:  model.UpdatedAt,
	}

	if len(model.Breakdown) > 0 {
		var scores []models.DocumentScore
		if err := json.Unmarshal(model.Breakdown, &scores); err == nil {
			breakdown := make([]DocumentScoreResponse, 0, len(scores))
			for _, score := range scores {
				breakdown = append(breakdown, DocumentScoreResponse{
					DocumentTypeID:    score.DocumentTypeID,
					DocumentTypeCode:  score.DocumentTypeCode,
					SupervisorScore:   score.SupervisorScore,
					SupervisorWeight:  score.SupervisorWeight,
					CommitteeAvgScore: score.CommitteeAvgScore,
					CommitteeWeight:   score.CommitteeWeight,
					EvaluatorCount:    score.EvaluatorCount,
					WeightedScore:     score.WeightedScore,
				})
			}
			response.Breakdown = breakdown
		}
	}

	return response
}
