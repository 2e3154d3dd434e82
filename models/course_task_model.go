package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseTask struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	TutorID     uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`

	DueDate          time.Time `gorm:"not null" json:"due_date"`
	MaxPoints        int       `gorm:"default:100" json:"max_points"`
	AllowAttachments bool      `gorm:"default:true" json:"allow_attachments"`
	Instructions     *string   `gorm:"type:text" json:"instructions"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`

	Course      Course           `gorm:"foreignkey:CourseID" json:"-"`
	Tutor       User             `gorm:"foreignkey:TutorID" json:"-"`
	Submissions []TaskSubmission `gorm:"foreignkey:TaskID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
