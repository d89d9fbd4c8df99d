package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
)

func newCalendarService(t *testing.T) (*CalendarService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	cfg := testConfig()
	cfg.AdminEmail = "admin@sequoiaprojects.com"
	return NewCalendarService(db, cfg), db
}

func seedExternalCalendar(t *testing.T, db *gorm.DB, propertyID uint, source, url string) *models.ExternalCalendar {
	t.Helper()
	calendar := &models.ExternalCalendar{
		PropertyID: propertyID,
		Source:     source,
		ICalURL:    url,
	}
	require.NoError(t, db.Create(calendar).Error)
	return calendar
}

func seedStoredBooking(t *testing.T, db *gorm.DB, propertyID uint, status string, checkIn, checkOut models.Date) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		BookingID:     uuid.New(),
		PropertyID:    propertyID,
		Name:          "Ada Obi",
		Email:         "ada@example.com",
		Phone:         "+2348012345678",
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        2,
		Nights:        checkIn.DaysUntil(checkOut),
		TotalAmount:   decimal.NewFromInt(150000),
		Currency:      "₦",
		Status:        status,
		PaymentStatus: models.BookingPaymentUnpaid,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

// icalFeed assembles a VCALENDAR payload the way listing platforms publish
// them: CRLF line endings and all-day DATE values.
func icalFeed(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Airbnb Inc//Hosting Calendar 0.8.8//EN",
		"CALSCALE:GREGORIAN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func icalEvent(uid, summary string, start, end models.Date) string {
	return strings.Join([]string{
		"BEGIN:VEVENT",
		"DTSTAMP:20260101T000000Z",
		"UID:" + uid,
		"DTSTART;VALUE=DATE:" + start.Format("20060102"),
		"DTEND;VALUE=DATE:" + end.Format("20060102"),
		"SUMMARY:" + summary,
		"END:VEVENT",
	}, "\r\n")
}

func TestExportPropertyCalendar(t *testing.T) {
	svc, db := newCalendarService(t)
	property := seedProperty(t, db, "50000")

	checkIn := models.Today().AddDays(10)
	confirmed := seedStoredBooking(t, db, property.ID, models.BookingStatusConfirmed, checkIn, checkIn.AddDays(3))
	pending := seedStoredBooking(t, db, property.ID, models.BookingStatusPending, checkIn.AddDays(5), checkIn.AddDays(7))
	cancelled := seedStoredBooking(t, db, property.ID, models.BookingStatusCancelled, checkIn.AddDays(8), checkIn.AddDays(9))

	block := &models.BlockedDate{
		PropertyID: property.ID,
		StartDate:  checkIn.AddDays(20),
		EndDate:    checkIn.AddDays(22),
		Notes:      "maintenance",
	}
	require.NoError(t, db.Create(block).Error)

	payload, filename, err := svc.ExportProperty(property.Slug)
	require.NoError(t, err)

	assert.Equal(t, "Lekki_Two_Bedroom_calendar.ics", filename)
	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	assert.Contains(t, payload, "METHOD:PUBLISH")

	// Active bookings are exported; cancelled ones released their range.
	assert.Contains(t, payload, "booking-"+confirmed.BookingID.String()+"@sequoiaprojects.com")
	assert.Contains(t, payload, "booking-"+pending.BookingID.String()+"@sequoiaprojects.com")
	assert.NotContains(t, payload, cancelled.BookingID.String())

	assert.Contains(t, payload, "BOOKED - Ada Obi")
	assert.Contains(t, payload, "STATUS:CONFIRMED")
	assert.Contains(t, payload, "STATUS:TENTATIVE")

	// Admin blocks ride along so external platforms see them too.
	assert.Contains(t, payload, fmt.Sprintf("blocked-%d@sequoiaprojects.com", block.ID))
}

func TestExportPropertyCalendarUnknownSlug(t *testing.T) {
	svc, _ := newCalendarService(t)

	_, _, err := svc.ExportProperty("no-such-listing")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestSyncImportsFeedAsBlocks(t *testing.T) {
	svc, db := newCalendarService(t)
	property := seedProperty(t, db, "50000")

	start := models.Today().AddDays(10)
	feed := icalFeed(
		icalEvent("evt-1@airbnb.com", "Reserved", start, start.AddDays(3)),
		icalEvent("evt-2@airbnb.com", "Airbnb (Not available)", start.AddDays(5), start.AddDays(8)),
		// Ended last month, must be skipped.
		icalEvent("evt-old@airbnb.com", "Reserved", models.Today().AddDays(-30), models.Today().AddDays(-27)),
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Sequoia-Projects-Calendar-Sync/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/calendar")
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	calendar := seedExternalCalendar(t, db, property.ID, models.CalendarSourceAirbnb, server.URL)

	result, err := svc.Sync(calendar)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 3, result.TotalEvents)
	assert.Empty(t, result.Errors)

	var blocks []models.BlockedDate
	require.NoError(t, db.Where("property_id = ?", property.ID).Order("start_date ASC").Find(&blocks).Error)
	require.Len(t, blocks, 2)
	require.NotNil(t, blocks[0].SourceBookingID)
	assert.Equal(t, "evt-1@airbnb.com", *blocks[0].SourceBookingID)
	assert.Equal(t, start.String(), blocks[0].StartDate.String())
	assert.Equal(t, start.AddDays(3).String(), blocks[0].EndDate.String())
	assert.Equal(t, "Reserved", blocks[0].Notes)
	require.NotNil(t, blocks[0].ExternalCalendarID)
	assert.Equal(t, calendar.ID, *blocks[0].ExternalCalendarID)

	var stored models.ExternalCalendar
	require.NoError(t, db.First(&stored, calendar.ID).Error)
	require.NotNil(t, stored.LastSynced)
	assert.Empty(t, stored.SyncErrors)

	// Imported ranges feed the availability engine.
	bookings := NewBookingService(db, testConfig(), &notifierRecorder{})
	available, err := bookings.IsAvailable(property.Slug, start, start.AddDays(2))
	require.NoError(t, err)
	assert.False(t, available)

	available, err = bookings.IsAvailable(property.Slug, start.AddDays(3), start.AddDays(5))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestSyncIsIdempotentAndTracksMovedEvents(t *testing.T) {
	svc, db := newCalendarService(t)
	property := seedProperty(t, db, "50000")

	start := models.Today().AddDays(10)
	feed := icalFeed(icalEvent("evt-1@airbnb.com", "Reserved", start, start.AddDays(3)))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	calendar := seedExternalCalendar(t, db, property.ID, models.CalendarSourceBookingCom, server.URL)

	result, err := svc.Sync(calendar)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	// Same feed again: nothing to do.
	result, err = svc.Sync(calendar)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Updated)

	// The guest moved their stay; the block is re-dated, not duplicated.
	feed = icalFeed(icalEvent("evt-1@airbnb.com", "Reserved", start.AddDays(2), start.AddDays(5)))
	result, err = svc.Sync(calendar)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	var blocks []models.BlockedDate
	require.NoError(t, db.Where("property_id = ?", property.ID).Find(&blocks).Error)
	require.Len(t, blocks, 1)
	assert.Equal(t, start.AddDays(2).String(), blocks[0].StartDate.String())
	assert.Equal(t, start.AddDays(5).String(), blocks[0].EndDate.String())
}

func TestSyncRecordsFetchFailure(t *testing.T) {
	svc, db := newCalendarService(t)
	property := seedProperty(t, db, "50000")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	calendar := seedExternalCalendar(t, db, property.ID, models.CalendarSourceVRBO, server.URL)

	_, err := svc.Sync(calendar)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch calendar")

	var stored models.ExternalCalendar
	require.NoError(t, db.First(&stored, calendar.ID).Error)
	assert.Contains(t, stored.SyncErrors, "failed to fetch calendar")
	assert.Nil(t, stored.LastSynced)
}

func TestSyncAllSkipsInactiveCalendars(t *testing.T) {
	svc, db := newCalendarService(t)
	property := seedProperty(t, db, "50000")

	start := models.Today().AddDays(10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, icalFeed(icalEvent("evt-1@airbnb.com", "Reserved", start, start.AddDays(2))))
	}))
	defer server.Close()

	seedExternalCalendar(t, db, property.ID, models.CalendarSourceAirbnb, server.URL)
	inactive := seedExternalCalendar(t, db, property.ID, models.CalendarSourceBookingCom, server.URL)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	reports, err := svc.SyncAll()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Airbnb", reports[0].Source)
	assert.Equal(t, "Lekki Two Bedroom", reports[0].Property)
	assert.Empty(t, reports[0].Error)
	require.NotNil(t, reports[0].Result)
	assert.Equal(t, 1, reports[0].Result.Created)
}
