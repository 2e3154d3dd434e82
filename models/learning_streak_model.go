package models

import (
	"time"

	"github.com/google/uuid"
)

type LearningStreak struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;unique" json:"student_id"`

	CurrentStreak        int        `gorm:"default:0" json:"current_streak"`
	LongestStreak        int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate     *time.Time `json:"last_activity_date"`
	StreakStartDate      *time.Time `json:"streak_start_date"`
	TotalActiveDays      int        `gorm:"default:0" json:"total_active_days"`
	TotalLearningMinutes int        `gorm:"default:0" json:"total_learning_minutes"`

	Student User `gorm:"foreignkey:StudentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
