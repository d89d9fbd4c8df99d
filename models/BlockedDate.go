package models

import "gorm.io/gorm"

// BlockedDate is a [start_date, end_date) range during which a property
// cannot be booked, created either by an admin or by an external calendar
// sync. Blocks participate in availability checks with the same half-open
// semantics as bookings.
type BlockedDate struct {
	gorm.Model
	PropertyID uint      `json:"-" gorm:"not null;index"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`

	// Set when the block was imported from an external feed; the source
	// booking id is the external event's UID, used to upsert on re-sync.
	ExternalCalendarID *uint             `json:"external_calendar_id" gorm:"index"`
	ExternalCalendar   *ExternalCalendar `json:"external_calendar,omitempty" gorm:"foreignKey:ExternalCalendarID"`
	SourceBookingID    *string           `json:"source_booking_id"`

	StartDate Date   `json:"start_date" gorm:"not null;index"`
	EndDate   Date   `json:"end_date" gorm:"not null"`
	Notes     string `json:"notes"`
}

// Overlaps applies the same half-open interval rule as Booking.Overlaps.
func (b *BlockedDate) Overlaps(checkIn, checkOut Date) bool {
	return b.StartDate.Before(checkOut.Time) && checkIn.Before(b.EndDate.Time)
}
