package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
)

// CalendarService handles two-way iCal synchronization: exporting a
// property's bookings as a feed that Airbnb/Booking.com can consume, and
// importing their feeds as BlockedDate rows so externally-booked ranges are
// unavailable here too.
type CalendarService struct {
	db     *gorm.DB
	cfg    *config.Config
	client *http.Client
}

func NewCalendarService(db *gorm.DB, cfg *config.Config) *CalendarService {
	return &CalendarService{
		db:     db,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

const calendarUID = "@sequoiaprojects.com"

// ExportProperty renders every non-cancelled booking and every blocked range
// of a property as an iCal feed. Returns the payload and a download filename.
func (s *CalendarService) ExportProperty(propertySlug string) (string, string, error) {
	var property models.Property
	if err := s.db.Where("slug = ?", propertySlug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrPropertyNotFound
		}
		return "", "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(property.Title + " - Bookings")
	cal.SetXWRCalDesc("Booking calendar for " + property.Title)
	cal.SetXWRTimezone("UTC")

	var bookings []models.Booking
	err := s.db.Where("property_id = ? AND status <> ?", property.ID, models.BookingStatusCancelled).
		Order("check_in ASC").Find(&bookings).Error
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	for _, booking := range bookings {
		event := cal.AddEvent(fmt.Sprintf("booking-%s%s", booking.BookingID, calendarUID))
		event.SetSummary("BOOKED - " + booking.Name)
		event.SetDescription(fmt.Sprintf(
			"Booking ID: %s\nGuest: %s\nEmail: %s\nPhone: %s\nGuests: %d\nStatus: %s\nPayment Status: %s",
			booking.BookingID, booking.Name, booking.Email, booking.Phone,
			booking.Guests, booking.Status, booking.PaymentStatus))
		event.SetAllDayStartAt(booking.CheckIn.Time)
		event.SetAllDayEndAt(booking.CheckOut.Time)
		if booking.Status == models.BookingStatusPending {
			event.SetStatus(ics.ObjectStatusTentative)
		} else {
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
		event.SetOrganizer(s.cfg.AdminEmail, ics.WithCN("Sequoia Projects"))
		event.SetCreatedTime(booking.CreatedAt)
		event.SetModifiedAt(booking.UpdatedAt)
		event.SetDtStampTime(now)
		event.SetTimeTransparency(ics.TransparencyOpaque)
	}

	var blocks []models.BlockedDate
	err = s.db.Preload("ExternalCalendar").
		Where("property_id = ?", property.ID).Order("start_date ASC").Find(&blocks).Error
	if err != nil {
		return "", "", err
	}

	for _, block := range blocks {
		event := cal.AddEvent(fmt.Sprintf("blocked-%d%s", block.ID, calendarUID))
		summary := "BLOCKED"
		if block.ExternalCalendar != nil {
			summary += " (" + block.ExternalCalendar.SourceLabel() + ")"
		}
		event.SetSummary(summary)
		description := "Property blocked"
		if block.Notes != "" {
			description += "\nNotes: " + block.Notes
		}
		if block.SourceBookingID != nil {
			description += "\nExternal Booking ID: " + *block.SourceBookingID
		}
		event.SetDescription(description)
		event.SetAllDayStartAt(block.StartDate.Time)
		event.SetAllDayEndAt(block.EndDate.Time)
		event.SetStatus(ics.ObjectStatusConfirmed)
		event.SetCreatedTime(block.CreatedAt)
		event.SetModifiedAt(block.UpdatedAt)
		event.SetDtStampTime(now)
		event.SetTimeTransparency(ics.TransparencyOpaque)
	}

	filename := strings.ReplaceAll(property.Title, " ", "_") + "_calendar.ics"
	return cal.Serialize(), filename, nil
}

// SyncResult reports what one feed import did.
type SyncResult struct {
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	TotalEvents int      `json:"total_events"`
	Errors      []string `json:"errors,omitempty"`
}

// Sync fetches one external feed and upserts its events as blocked dates,
// keyed by the event UID so re-syncs update in place. Past events are
// skipped. Fetch and parse failures are recorded on the calendar row before
// being returned.
func (s *CalendarService) Sync(calendar *models.ExternalCalendar) (*SyncResult, error) {
	feed, err := s.fetchFeed(calendar.ICalURL)
	if err != nil {
		s.recordSyncError(calendar, err)
		return nil, err
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(feed))
	if err != nil {
		err = fmt.Errorf("parsing calendar feed: %w", err)
		s.recordSyncError(calendar, err)
		return nil, err
	}

	result := &SyncResult{}
	today := models.Today()

	events := cal.Events()
	result.TotalEvents = len(events)
	for _, event := range events {
		outcome, err := s.applyEvent(calendar, event, today)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		switch outcome {
		case applyCreated:
			result.Created++
		case applyUpdated:
			result.Updated++
		}
	}

	now := time.Now()
	calendar.LastSynced = &now
	calendar.SyncErrors = ""
	err = s.db.Model(calendar).Updates(map[string]interface{}{
		"last_synced": now,
		"sync_errors": "",
	}).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

type applyOutcome int

const (
	applySkipped applyOutcome = iota
	applyCreated
	applyUpdated
)

// applyEvent upserts one feed event as a blocked date. Events ending before
// today are ignored; an existing block with the same UID is re-dated in place
// when the feed moved it.
func (s *CalendarService) applyEvent(calendar *models.ExternalCalendar, event *ics.VEvent, today models.Date) (applyOutcome, error) {
	start, end, err := eventDates(event)
	if err != nil {
		return applySkipped, err
	}
	if end.Before(today.Time) {
		return applySkipped, nil
	}

	uid := event.Id()
	summary := ""
	if prop := event.GetProperty(ics.ComponentPropertySummary); prop != nil {
		summary = prop.Value
	}

	var existing models.BlockedDate
	err = s.db.Where("property_id = ? AND external_calendar_id = ? AND source_booking_id = ?",
		calendar.PropertyID, calendar.ID, uid).First(&existing).Error
	if err == nil {
		if existing.StartDate.Equal(start.Time) && existing.EndDate.Equal(end.Time) {
			return applySkipped, nil
		}
		updateErr := s.db.Model(&existing).Updates(map[string]interface{}{
			"start_date": start,
			"end_date":   end,
			"notes":      summary,
		}).Error
		if updateErr != nil {
			return applySkipped, updateErr
		}
		return applyUpdated, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return applySkipped, err
	}

	block := models.BlockedDate{
		PropertyID:         calendar.PropertyID,
		ExternalCalendarID: &calendar.ID,
		SourceBookingID:    &uid,
		StartDate:          start,
		EndDate:            end,
		Notes:              summary,
	}
	if err := s.db.Create(&block).Error; err != nil {
		return applySkipped, err
	}
	return applyCreated, nil
}

// eventDates extracts the event range, accepting both all-day DATE values and
// timestamped DATE-TIME values.
func eventDates(event *ics.VEvent) (models.Date, models.Date, error) {
	start, err := event.GetAllDayStartAt()
	if err != nil {
		start, err = event.GetStartAt()
		if err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("event %s: missing start date", event.Id())
		}
	}
	end, err := event.GetAllDayEndAt()
	if err != nil {
		end, err = event.GetEndAt()
		if err != nil {
			return models.Date{}, models.Date{}, fmt.Errorf("event %s: missing end date", event.Id())
		}
	}
	toDate := func(t time.Time) models.Date {
		return models.NewDate(t.Year(), t.Month(), t.Day())
	}
	return toDate(start), toDate(end), nil
}

// SyncReport is one calendar's entry in a sync-all run.
type SyncReport struct {
	Property string      `json:"property"`
	Source   string      `json:"source"`
	Result   *SyncResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// SyncAll syncs every active external calendar and reports per-calendar
// outcomes. Individual failures never abort the run.
func (s *CalendarService) SyncAll() ([]SyncReport, error) {
	var calendars []models.ExternalCalendar
	err := s.db.Preload("Property").Where("is_active = ?", true).Find(&calendars).Error
	if err != nil {
		return nil, err
	}

	reports := make([]SyncReport, 0, len(calendars))
	for i := range calendars {
		calendar := &calendars[i]
		report := SyncReport{Source: calendar.SourceLabel()}
		if calendar.Property != nil {
			report.Property = calendar.Property.Title
		}

		result, err := s.Sync(calendar)
		if err != nil {
			report.Error = err.Error()
		} else {
			report.Result = result
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *CalendarService) fetchFeed(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	req.Header.Set("User-Agent", "Sequoia-Projects-Calendar-Sync/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch calendar: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *CalendarService) recordSyncError(calendar *models.ExternalCalendar, syncErr error) {
	calendar.SyncErrors = syncErr.Error()
	s.db.Model(calendar).Update("sync_errors", calendar.SyncErrors)
}
