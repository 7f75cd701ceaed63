package models

import (
	"time"

	"gorm.io/datatypes"
)

// FinalResult is the single aggregated outcome of a project. The breakdown
// snapshots the weights used at computation time so later catalog edits never
// change an already-computed result. Students see the result only once
// Released is set.
type FinalResult struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"not null;uniqueIndex" json:"project_id"`
	TotalScore float64        `gorm:"not null" json:"total_score"`
	Breakdown  datatypes.JSON `gorm:"type:jsonb" json:"breakdown"`
	Released   bool           `gorm:"not null;default:false" json:"released"`
	ReleasedAt *time.Time     `json:"released_at"`
	ComputedBy *uint          `json:"computed_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DocumentScore is one entry of the FinalResult breakdown.
type DocumentScore struct {
	DocumentTypeID    uint    `json:"document_type_id"`
	DocumentTypeCode  string  `json:"document_type_code"`
	SupervisorScore   float64 `json:"supervisor_score"`
	SupervisorWeight  float64 `json:"supervisor_weight"`
	CommitteeAvgScore float64 `json:"committee_avg_score"`
	CommitteeWeight   float64 `json:"committee_weight"`
	EvaluatorCount    int     `json:"evaluator_count"`
	WeightedScore     float64 `json:"weighted_score"`
}
