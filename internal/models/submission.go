package models

import "time"

// DocumentSubmission is one uploaded revision of a required document. A
// rejected submission is never edited in place: the resubmission is a new row
// pointing back at the one it supersedes, so the full lineage stays queryable.
type DocumentSubmission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ProjectID      uint       `gorm:"not null;index:idx_project_doctype" json:"project_id"`
	DocumentTypeID uint       `gorm:"not null;index:idx_project_doctype" json:"document_type_id"`
	Status         string     `gorm:"size:32;not null;index" json:"status"`
	UploadedBy     uint       `gorm:"not null" json:"uploaded_by"`
	FileReference  string     `gorm:"size:64;not null" json:"file_reference"`
	FileURL        string     `gorm:"size:512" json:"file_url"`
	Comments       string     `gorm:"type:text" json:"comments"`
	IsFinal        bool       `gorm:"not null;default:false" json:"is_final"`
	SupersedesID   *uint      `gorm:"index" json:"supersedes_id"`
	ReviewedBy     *uint      `json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	LockedBy       *uint      `json:"locked_by"`
	LockedAt       *time.Time `json:"locked_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	DocumentType DocumentType `gorm:"constraint:OnUpdate:CASCADE" json:"document_type"`
	Project      Project      `gorm:"constraint:OnUpdate:CASCADE" json:"project"`
}

const (
	// SubmissionStatusDraft is reserved for uploads saved before hand-in.
	SubmissionStatusDraft = "draft"
	// SubmissionStatusPendingReview awaits the supervisor's verdict.
	SubmissionStatusPendingReview = "pending_review"
	// SubmissionStatusApproved was accepted by the supervisor.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRevisionRequested was rejected; a new revision is expected.
	SubmissionStatusRevisionRequested = "revision_requested"
	// SubmissionStatusLocked is frozen by the evaluation committee for marking.
	SubmissionStatusLocked = "locked"
)

// ActiveSubmissionStatuses are the states in which a (project, document type)
// pair is considered occupied and no new revision may be created.
var ActiveSubmissionStatuses = []string{
	SubmissionStatusDraft,
	SubmissionStatusPendingReview,
	SubmissionStatusApproved,
	SubmissionStatusLocked,
}

// IsLocked reports whether the submission has passed the evaluation boundary.
func (s DocumentSubmission) IsLocked() bool {
	return s.Status == SubmissionStatusLocked
}

// CanReview reports whether a supervisor verdict is currently allowed.
func (s DocumentSubmission) CanReview() bool {
	return s.Status == SubmissionStatusPendingReview
}

// CanLock reports whether the committee may freeze the submission.
func (s DocumentSubmission) CanLock() bool {
	return s.Status == SubmissionStatusApproved && s.IsFinal
}
