package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionStatusDraft     = "draft"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

type TaskSubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_task_student" json:"task_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_task_student" json:"student_id"`

	SubmissionText *string `gorm:"type:text" json:"submission_text"`
	Status         string  `gorm:"size:20;not null;default:'draft'" json:"status"`

	PointsEarned  *int       `json:"points_earned"`
	TutorFeedback *string    `gorm:"type:text" json:"tutor_feedback"`
	GradedByID    *uuid.UUID `gorm:"type:uuid" json:"graded_by_id"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	GradedAt      *time.Time `json:"graded_at"`

	Task        CourseTask       `gorm:"foreignkey:TaskID" json:"-"`
	Student     User             `gorm:"foreignkey:StudentID" json:"-"`
	GradedBy    *User            `gorm:"foreignkey:GradedByID" json:"-"`
	Attachments []TaskAttachment `gorm:"foreignkey:TaskSubmissionID" json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
