package models

import (
	"time"

	"gorm.io/gorm"
)

// Dispute types.
const (
	DisputeTypeNoShow        = "no_show"
	DisputeTypeCancellation  = "cancellation"
	DisputeTypeEarlyCheckout = "early_checkout"
	DisputeTypeDamage        = "damage"
	DisputeTypeRefund        = "refund"
	DisputeTypeOther         = "other"
)

// Dispute status values.
const (
	DisputeStatusOpen       = "open"
	DisputeStatusInProgress = "in_progress"
	DisputeStatusResolved   = "resolved"
	DisputeStatusClosed     = "closed"
)

// BookingDispute records a conflict raised against a booking (no-show,
// damage, refund request) and its resolution trail.
type BookingDispute struct {
	gorm.Model
	BookingRef uint     `json:"-" gorm:"column:booking_id;not null;index"`
	Booking    *Booking `json:"booking,omitempty" gorm:"foreignKey:BookingRef"`

	DisputeType string `json:"dispute_type" gorm:"type:varchar(50);not null"`
	Status      string `json:"status" gorm:"type:varchar(50);default:'open';index"`
	Description string `json:"description" gorm:"not null"`

	Resolution string     `json:"resolution"`
	ResolvedAt *time.Time `json:"resolved_at"`
	ResolvedBy string     `json:"resolved_by"`
}
