package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseContent struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	ContentType string    `gorm:"size:20;not null" json:"content_type"`
	PublicID    string    `gorm:"size:255" json:"public_id"`
	SecureURL   string    `gorm:"size:255;not null" json:"secure_url"`
	Duration    float64   `gorm:"default:0" json:"duration"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
