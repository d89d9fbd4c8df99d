package models

import (
	"time"

	"gorm.io/gorm"
)

// Calendar source platforms.
const (
	CalendarSourceAirbnb     = "airbnb"
	CalendarSourceBookingCom = "booking_com"
	CalendarSourceVRBO       = "vrbo"
	CalendarSourceOther      = "other"
)

// ExternalCalendar is an iCal feed imported from an external listing platform.
// Imported events become BlockedDate rows so externally-booked ranges are
// unavailable here too. One feed per property and source.
type ExternalCalendar struct {
	gorm.Model
	PropertyID uint      `json:"-" gorm:"not null;uniqueIndex:idx_external_calendars_property_source"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`

	Source  string `json:"source" gorm:"type:varchar(50);not null;uniqueIndex:idx_external_calendars_property_source"`
	ICalURL string `json:"ical_url" gorm:"column:ical_url;type:varchar(500);not null"`

	IsActive   *bool      `json:"is_active" gorm:"default:true"`
	LastSynced *time.Time `json:"last_synced"`
	SyncErrors string     `json:"sync_errors"`
}

// SourceLabel returns the display name for a calendar source.
func (c *ExternalCalendar) SourceLabel() string {
	switch c.Source {
	case CalendarSourceAirbnb:
		return "Airbnb"
	case CalendarSourceBookingCom:
		return "Booking.com"
	case CalendarSourceVRBO:
		return "VRBO"
	default:
		return "Other"
	}
}
