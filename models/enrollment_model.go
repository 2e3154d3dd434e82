package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment links a student to a course. The composite unique index is the
// cross-process backstop for the one-enrollment-per-(user,course) rule; both
// the paid and the free enrollment paths also check before inserting.
type Enrollment struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`

	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
