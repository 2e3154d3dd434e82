package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned app-side so inserts behave the same on postgres and on the
// sqlite driver used in tests. The column default remains as a backstop.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error           { ensureID(&u.ID); return nil }
func (c *Course) BeforeCreate(tx *gorm.DB) error         { ensureID(&c.ID); return nil }
func (c *CourseContent) BeforeCreate(tx *gorm.DB) error  { ensureID(&c.ID); return nil }
func (e *Enrollment) BeforeCreate(tx *gorm.DB) error     { ensureID(&e.ID); return nil }
func (p *Payment) BeforeCreate(tx *gorm.DB) error        { ensureID(&p.ID); return nil }
func (r *Review) BeforeCreate(tx *gorm.DB) error         { ensureID(&r.ID); return nil }
func (p *CourseProgress) BeforeCreate(tx *gorm.DB) error { ensureID(&p.ID); return nil }
func (t *CourseTask) BeforeCreate(tx *gorm.DB) error     { ensureID(&t.ID); return nil }
func (t *StudentTask) BeforeCreate(tx *gorm.DB) error    { ensureID(&t.ID); return nil }
func (s *TaskSubmission) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
func (a *TaskAttachment) BeforeCreate(tx *gorm.DB) error { ensureID(&a.ID); return nil }
func (c *Certificate) BeforeCreate(tx *gorm.DB) error    { ensureID(&c.ID); return nil }
func (s *LearningStreak) BeforeCreate(tx *gorm.DB) error { ensureID(&s.ID); return nil }
