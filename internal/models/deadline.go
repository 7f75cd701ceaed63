package models

import "time"

// DeadlineBatch groups the per-document-type deadlines of one project intake.
type DeadlineBatch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Deadlines []ProjectDeadline `gorm:"foreignKey:BatchID" json:"deadlines"`
}

// ProjectDeadline fixes the due date for one document type within a batch.
// SortOrder mirrors the document type's display order at scheduling time.
type ProjectDeadline struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BatchID        uint      `gorm:"not null;uniqueIndex:idx_batch_doctype" json:"batch_id"`
	DocumentTypeID uint      `gorm:"not null;uniqueIndex:idx_batch_doctype" json:"document_type_id"`
	DeadlineDate   time.Time `gorm:"not null" json:"deadline_date"`
	SortOrder      int       `gorm:"not null" json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`

	DocumentType DocumentType `json:"document_type"`
}

// IsPast reports whether the deadline has already elapsed.
func (d ProjectDeadline) IsPast(reference time.Time) bool {
	return reference.After(d.DeadlineDate)
}

// IsApproaching reports whether the deadline falls within the given window
// from the reference time. Past deadlines are never approaching.
func (d ProjectDeadline) IsApproaching(reference time.Time, within time.Duration) bool {
	if d.IsPast(reference) {
		return false
	}
	return d.DeadlineDate.Sub(reference) <= within
}
