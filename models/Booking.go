package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking status values.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed" // terminal
)

// Booking payment_status values.
const (
	BookingPaymentUnpaid  = "unpaid"
	BookingPaymentPending = "pending"
	BookingPaymentPaid    = "paid"
	BookingPaymentFailed  = "failed"
)

// Occupancy states.
const (
	OccupancyBooked   = "booked"
	OccupancyOccupied = "occupied"
	OccupancyDeparted = "departed"
)

// Booking is a reservation of a property for a [check_in, check_out) range.
// Cancelled bookings are kept for audit but release their date range.
type Booking struct {
	gorm.Model
	BookingID  uuid.UUID `json:"booking_id" gorm:"type:uuid;uniqueIndex;not null"`
	PropertyID uint      `json:"-" gorm:"not null;index"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`

	// Customer contact
	Name  string `json:"name" gorm:"not null"`
	Email string `json:"email" gorm:"not null"`
	Phone string `json:"phone"`

	CheckIn  Date `json:"check_in" gorm:"not null;index"`
	CheckOut Date `json:"check_out" gorm:"not null;index"`
	Guests   int  `json:"guests" gorm:"not null"`
	Nights   int  `json:"nights" gorm:"not null"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(15,2);not null"`
	Currency    string          `json:"currency" gorm:"type:varchar(10);default:'₦'"`

	Status        string `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus string `json:"payment_status" gorm:"type:varchar(20);default:'unpaid'"`

	SpecialRequests    string `json:"special_requests"`
	CancellationReason string `json:"cancellation_reason"`

	// Occupancy tracking
	CheckedInAt     *time.Time `json:"checked_in_at"`
	CheckedOutAt    *time.Time `json:"checked_out_at"`
	OccupancyStatus string     `json:"occupancy_status" gorm:"type:varchar(20);default:'booked'"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:BookingRef"`
}

// Overlaps applies the half-open interval rule: [a,b) and [c,d) overlap
// iff a < d and c < b. A checkout on another booking's check-in day is
// not a conflict.
func (b *Booking) Overlaps(checkIn, checkOut Date) bool {
	return b.CheckIn.Before(checkOut.Time) && checkIn.Before(b.CheckOut.Time)
}

// BlocksDates reports whether this booking holds its date range. Only
// cancelled bookings release their range.
func (b *Booking) BlocksDates() bool {
	return b.Status != BookingStatusCancelled
}
