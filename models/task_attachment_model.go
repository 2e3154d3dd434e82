package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskAttachment struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TaskSubmissionID uuid.UUID `gorm:"type:uuid;not null" json:"task_submission_id"`
	UploadedByID     uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by_id"`

	FileName      string  `gorm:"size:255;not null" json:"file_name"`
	FileURL       string  `gorm:"size:255;not null" json:"file_url"`
	ContentType   *string `gorm:"size:100" json:"content_type"`
	FileSizeBytes int64   `gorm:"default:0" json:"file_size_bytes"`

	TaskSubmission TaskSubmission `gorm:"foreignkey:TaskSubmissionID" json:"-"`
	UploadedBy     User           `gorm:"foreignkey:UploadedByID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
