package models

import "time"

// DocumentType describes one required deliverable category (proposal, thesis,
// ...) together with the weights its marks contribute to the final result.
type DocumentType struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Code             string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	SupervisorWeight float64   `gorm:"not null" json:"supervisor_weight"`
	CommitteeWeight  float64   `gorm:"not null" json:"committee_weight"`
	DisplayOrder     int       `gorm:"not null;index" json:"display_order"`
	Active           bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
