package models

import "time"

// Project is the read model for a student group's final-year project. Group
// membership and user profiles are managed elsewhere; the core only needs the
// assigned supervisor, the deadline batch and the member roster for
// authorization checks.
type Project struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	BatchID      uint      `gorm:"not null;index" json:"batch_id"`
	SupervisorID uint      `gorm:"not null;index" json:"supervisor_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Members []ProjectMember `json:"members"`
}

// ProjectMember links a student to a project.
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_student" json:"project_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_project_student" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether the given student belongs to the project.
func (p Project) HasMember(studentID uint) bool {
	for _, member := range p.Members {
		if member.StudentID == studentID {
			return true
		}
	}
	return false
}
