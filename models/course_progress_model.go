package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course" json:"course_id"`

	WatchedMinutes      int     `gorm:"default:0" json:"watched_minutes"`
	TotalMinutes        int     `gorm:"default:0" json:"total_minutes"`
	ProgressPercentage  float64 `gorm:"type:numeric(5,2);default:0" json:"progress_percentage"`
	LastWatchedPosition int     `gorm:"default:0" json:"last_watched_position"`

	IsCompleted   bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at"`
	StartedAt     time.Time  `json:"started_at"`
	LastWatchedAt time.Time  `json:"last_watched_at"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
