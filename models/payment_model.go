package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records one attempt to pay for a course. Reference is the gateway
// transaction reference assigned at initiation; exactly one row may hold it.
// A row moves pending -> completed exactly once, via webhook confirmation.
type Payment struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`

	Amount        float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string  `gorm:"size:3;default:'NGN'" json:"currency"`
	PaymentMethod string  `gorm:"size:50;not null" json:"payment_method"`
	Reference     string  `gorm:"size:255;not null;unique" json:"reference"`
	ProviderTxnID *string `gorm:"size:255" json:"provider_txn_id"`
	Status        string  `gorm:"size:20;not null;default:'pending'" json:"status"`

	ReceiptURL *string `gorm:"size:255" json:"receipt_url"`
	SplitMeta  *string `gorm:"type:text" json:"-"`
	Notes      *string `gorm:"type:text" json:"notes"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
