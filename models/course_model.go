package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    *string   `gorm:"size:100" json:"category"`
	Price       float64   `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Currency    string    `gorm:"size:3;default:'NGN'" json:"currency"`

	ThumbnailURL         *string `gorm:"size:255" json:"thumbnail_url"`
	PaystackSubaccountID *string `gorm:"size:255" json:"paystack_subaccount_id,omitempty"`

	TutorID     uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`

	Tutor       User            `gorm:"foreignkey:TutorID" json:"-"`
	Contents    []CourseContent `gorm:"foreignkey:CourseID" json:"contents,omitempty"`
	Enrollments []Enrollment    `gorm:"foreignkey:CourseID" json:"-"`
	Reviews     []Review        `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
