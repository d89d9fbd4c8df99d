package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
)

// Notifier receives lifecycle events. Implementations must be safe to call
// from goroutines; the booking flow never waits on or fails from them.
type Notifier interface {
	BookingCreated(booking *models.Booking)
	BookingConfirmed(booking *models.Booking)
	BookingCancelled(booking *models.Booking)
	PaymentReceived(payment *models.Payment, booking *models.Booking)
}

// BookingService owns booking validation, pricing and the booking state
// machine. The availability check and booking insertion are serialized per
// property: a keyed mutex is held across the re-check and the insert, both of
// which run inside one transaction.
type BookingService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier Notifier

	locks sync.Map // property ID -> *sync.Mutex
}

func NewBookingService(db *gorm.DB, cfg *config.Config, notifier Notifier) *BookingService {
	return &BookingService{db: db, cfg: cfg, notifier: notifier}
}

func (s *BookingService) propertyLock(propertyID uint) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(propertyID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// BookingDraft is a validated, priced, not-yet-persisted booking.
type BookingDraft struct {
	Property    *models.Property
	CheckIn     models.Date
	CheckOut    models.Date
	Guests      int
	Nights      int
	TotalAmount decimal.Decimal
	Currency    string
}

// CreateBookingInput carries the public booking-creation request.
type CreateBookingInput struct {
	PropertySlug    string
	Name            string
	Email           string
	Phone           string
	CheckIn         models.Date
	CheckOut        models.Date
	Guests          int
	SpecialRequests string
}

// ValidateAndPrice checks a requested stay against a property and prices it.
// Returns ErrPropertyNotFound for unknown slugs and FieldErrors for every
// other rejection. It does not persist anything.
func (s *BookingService) ValidateAndPrice(propertySlug string, checkIn, checkOut models.Date, guests int) (*BookingDraft, error) {
	var property models.Property
	if err := s.db.Where("slug = ?", propertySlug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return s.priceDraft(s.db, &property, checkIn, checkOut, guests, 0)
}

// priceDraft runs the full validation sequence against the given db handle
// (the live handle for reads, a transaction for check-and-insert).
// excludeBookingID removes one booking from the overlap check, for updates.
func (s *BookingService) priceDraft(db *gorm.DB, property *models.Property, checkIn, checkOut models.Date, guests int, excludeBookingID uint) (*BookingDraft, error) {
	if !property.IsBookable() {
		return nil, FieldErrors{"property_id": "this property is not currently available"}
	}

	errs := FieldErrors{}
	if checkIn.Before(models.Today().Time) {
		errs["check_in"] = "check-in date cannot be in the past"
	}
	if !checkOut.After(checkIn.Time) {
		errs["check_out"] = "check-out date must be after check-in date"
	}
	if guests < 1 {
		errs["guests"] = "at least one guest is required"
	} else if property.Guests != nil && guests > *property.Guests {
		errs["guests"] = "exceeds the property's guest capacity"
	} else if guests > s.cfg.MaxGuestsPerBooking {
		errs["guests"] = "exceeds the maximum guests per booking"
	}
	// Date errors preempt the overlap check so a past or inverted range is
	// never reported as a conflict.
	if len(errs) > 0 {
		return nil, errs
	}

	available, err := s.rangeFree(db, property.ID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, FieldErrors{"check_in": "property is not available for the selected dates"}
	}

	nights := checkIn.DaysUntil(checkOut)
	return &BookingDraft{
		Property:    property,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      guests,
		Nights:      nights,
		TotalAmount: property.Price.Mul(decimal.NewFromInt(int64(nights))),
		Currency:    property.Currency,
	}, nil
}

// rangeFree applies the half-open overlap rule against non-cancelled bookings
// and blocked dates: [a,b) and [c,d) overlap iff a < d AND c < b.
func (s *BookingService) rangeFree(db *gorm.DB, propertyID uint, checkIn, checkOut models.Date, excludeBookingID uint) (bool, error) {
	var overlapping int64
	q := db.Model(&models.Booking{}).
		Where("property_id = ? AND status <> ?", propertyID, models.BookingStatusCancelled).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if err := q.Count(&overlapping).Error; err != nil {
		return false, err
	}
	if overlapping > 0 {
		return false, nil
	}

	var blocked int64
	err := db.Model(&models.BlockedDate{}).
		Where("property_id = ?", propertyID).
		Where("start_date < ? AND end_date > ?", checkOut, checkIn).
		Count(&blocked).Error
	if err != nil {
		return false, err
	}
	return blocked == 0, nil
}

// IsAvailable answers the public availability query with the exact overlap
// semantics a subsequent booking attempt would apply.
func (s *BookingService) IsAvailable(propertySlug string, checkIn, checkOut models.Date) (bool, error) {
	var property models.Property
	if err := s.db.Where("slug = ?", propertySlug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrPropertyNotFound
		}
		return false, err
	}
	if !property.IsBookable() {
		return false, nil
	}
	return s.rangeFree(s.db, property.ID, checkIn, checkOut, 0)
}

// Create validates, prices and persists a booking together with its pending
// payment row. The per-property lock plus the transactional re-check
// guarantee that of two concurrent overlapping requests exactly one succeeds.
// A transient transaction failure is retried once.
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	var property models.Property
	if err := s.db.Where("slug = ?", input.PropertySlug).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	lock := s.propertyLock(property.ID)
	lock.Lock()
	defer lock.Unlock()

	booking, err := s.createLocked(&property, input)
	if err != nil && !isRejection(err) {
		log.Printf("booking create failed, retrying once: %v", err)
		booking, err = s.createLocked(&property, input)
	}
	if err != nil {
		return nil, err
	}

	go s.notifier.BookingCreated(booking)
	return booking, nil
}

func (s *BookingService) createLocked(property *models.Property, input CreateBookingInput) (*models.Booking, error) {
	var booking *models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		draft, err := s.priceDraft(tx, property, input.CheckIn, input.CheckOut, input.Guests, 0)
		if err != nil {
			return err
		}

		booking = &models.Booking{
			BookingID:       uuid.New(),
			PropertyID:      property.ID,
			Name:            input.Name,
			Email:           input.Email,
			Phone:           input.Phone,
			CheckIn:         draft.CheckIn,
			CheckOut:        draft.CheckOut,
			Guests:          draft.Guests,
			Nights:          draft.Nights,
			TotalAmount:     draft.TotalAmount,
			Currency:        draft.Currency,
			Status:          models.BookingStatusPending,
			PaymentStatus:   models.BookingPaymentUnpaid,
			SpecialRequests: input.SpecialRequests,
			OccupancyStatus: models.OccupancyBooked,
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		payment := models.Payment{
			BookingRef:    booking.ID,
			Amount:        draft.TotalAmount,
			Currency:      draft.Currency,
			PaymentMethod: models.PaymentMethodPaystack,
			Status:        models.PaymentStatusPending,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	booking.Property = property
	return booking, nil
}

// isRejection reports whether err is a caller problem (validation, not-found)
// rather than a transient persistence failure worth retrying.
func isRejection(err error) bool {
	if _, ok := IsFieldErrors(err); ok {
		return true
	}
	return errors.Is(err, ErrPropertyNotFound)
}

// GetByBookingID loads a booking with its property by public identifier.
func (s *BookingService) GetByBookingID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Preload("Property").Where("booking_id = ?", bookingID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// Cancel moves a booking to cancelled and releases its date range. Cancelling
// an already-cancelled booking is a no-op success and does not re-emit the
// cancellation notification. Completed bookings cannot be cancelled.
func (s *BookingService) Cancel(bookingID uuid.UUID, reason string) (*models.Booking, error) {
	booking, err := s.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case models.BookingStatusCancelled:
		return booking, nil
	case models.BookingStatusCompleted:
		return nil, ErrBookingCompleted
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = reason
	if err := s.db.Model(booking).Updates(map[string]interface{}{
		"status":              models.BookingStatusCancelled,
		"cancellation_reason": reason,
	}).Error; err != nil {
		return nil, err
	}

	go s.notifier.BookingCancelled(booking)
	return booking, nil
}

// ConfirmPaid advances a pending booking to confirmed once its payment has
// succeeded. Called by the payment service inside its own transaction.
func (s *BookingService) ConfirmPaid(tx *gorm.DB, booking *models.Booking) error {
	booking.PaymentStatus = models.BookingPaymentPaid
	if booking.Status == models.BookingStatusPending {
		booking.Status = models.BookingStatusConfirmed
	}
	return tx.Model(booking).Updates(map[string]interface{}{
		"status":         booking.Status,
		"payment_status": booking.PaymentStatus,
	}).Error
}

// CheckInGuest records the client's arrival on a confirmed booking.
func (s *BookingService) CheckInGuest(bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, ErrBookingCancelled
	}
	if booking.CheckedInAt != nil {
		return nil, ErrAlreadyCheckedIn
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	now := time.Now()
	booking.CheckedInAt = &now
	booking.OccupancyStatus = models.OccupancyOccupied
	err = s.db.Model(booking).Updates(map[string]interface{}{
		"checked_in_at":    now,
		"occupancy_status": models.OccupancyOccupied,
	}).Error
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckOutGuest records departure and completes the booking (terminal state).
func (s *BookingService) CheckOutGuest(bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CheckedInAt == nil {
		return nil, ErrNotCheckedIn
	}
	if booking.CheckedOutAt != nil {
		return nil, ErrAlreadyCheckedOut
	}

	now := time.Now()
	booking.CheckedOutAt = &now
	booking.OccupancyStatus = models.OccupancyDeparted
	booking.Status = models.BookingStatusCompleted
	err = s.db.Model(booking).Updates(map[string]interface{}{
		"checked_out_at":   now,
		"occupancy_status": models.OccupancyDeparted,
		"status":           models.BookingStatusCompleted,
	}).Error
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// BookedRanges returns the date ranges unavailable for a property: every
// non-cancelled booking plus every blocked range.
func (s *BookingService) BookedRanges(propertyID uint) ([]map[string]string, error) {
	var bookings []models.Booking
	err := s.db.Where("property_id = ? AND status <> ?", propertyID, models.BookingStatusCancelled).
		Order("check_in ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	var blocks []models.BlockedDate
	err = s.db.Where("property_id = ?", propertyID).Order("start_date ASC").Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	ranges := make([]map[string]string, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		ranges = append(ranges, map[string]string{"start": b.CheckIn.String(), "end": b.CheckOut.String()})
	}
	for _, b := range blocks {
		ranges = append(ranges, map[string]string{"start": b.StartDate.String(), "end": b.EndDate.String()})
	}
	return ranges, nil
}
