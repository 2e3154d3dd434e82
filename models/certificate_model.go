package models

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_student_course" json:"student_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_student_course" json:"course_id"`

	CertificateName   string     `gorm:"size:200;not null" json:"certificate_name"`
	CertificateNumber string     `gorm:"size:20;not null;unique" json:"certificate_number"`
	CertificateURL    *string    `gorm:"size:255" json:"certificate_url"`
	Description       *string    `gorm:"type:text" json:"description"`
	IssuedDate        time.Time  `json:"issued_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`

	Student User   `gorm:"foreignkey:StudentID" json:"-"`
	Course  Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
