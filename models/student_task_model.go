package models

import (
	"time"

	"github.com/google/uuid"
)

type StudentTask struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description *string   `gorm:"size:1000" json:"description"`
	Category    string    `gorm:"size:50;not null" json:"category"`
	Priority    string    `gorm:"size:20;not null;default:'medium'" json:"priority"`

	DueDate              *time.Time `json:"due_date"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes"`
	IsCompleted          bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at"`

	Student User `gorm:"foreignkey:StudentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *StudentTask) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(time.Now()) && !t.IsCompleted
}
