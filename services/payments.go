package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
)

// PaymentService owns the payment state machine: pending -> processing ->
// successful | failed, and the booking transitions a successful payment
// triggers. Gateway verification itself is an opaque external call.
type PaymentService struct {
	db       *gorm.DB
	cfg      *config.Config
	gateway  PaymentGateway
	bookings *BookingService
	notifier Notifier
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gateway PaymentGateway, bookings *BookingService, notifier Notifier) *PaymentService {
	return &PaymentService{db: db, cfg: cfg, gateway: gateway, bookings: bookings, notifier: notifier}
}

// InitializeResult is returned to the frontend to start the hosted checkout.
type InitializeResult struct {
	PaymentID        uint   `json:"payment_id"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Initialize starts a gateway transaction for a booking's pending payment.
// Already-paid bookings are rejected.
func (s *PaymentService) Initialize(bookingID uuid.UUID, metadata map[string]interface{}) (*InitializeResult, error) {
	booking, err := s.bookings.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.BookingPaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		return nil, ErrBookingNotPending
	}

	// Gateways charge in the smallest currency unit.
	amountMinor := booking.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()

	meta := map[string]interface{}{
		"booking_id":    booking.BookingID.String(),
		"customer_name": booking.Name,
		"check_in":      booking.CheckIn.String(),
		"check_out":     booking.CheckOut.String(),
		"nights":        booking.Nights,
	}
	if booking.Property != nil {
		meta["property_title"] = booking.Property.Title
	}
	for k, v := range metadata {
		meta[k] = v
	}

	initResp, err := s.gateway.InitializeTransaction(GatewayInitRequest{
		Email:       booking.Email,
		AmountMinor: amountMinor,
		Currency:    gatewayCurrency(booking.Currency),
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}

	// Reuse the pending payment created with the booking; create one only if
	// none is left.
	var payment models.Payment
	err = s.db.Where("booking_id = ? AND status = ?", booking.ID, models.PaymentStatusPending).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		payment = models.Payment{
			BookingRef:    booking.ID,
			Amount:        booking.TotalAmount,
			Currency:      booking.Currency,
			PaymentMethod: models.PaymentMethodPaystack,
		}
	} else if err != nil {
		return nil, err
	}

	payment.TransactionReference = &initResp.Reference
	payment.Status = models.PaymentStatusProcessing
	payment.GatewayResponse = datatypes.JSON(initResp.Raw)
	if err := s.db.Save(&payment).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(booking).Update("payment_status", models.BookingPaymentPending).Error; err != nil {
		return nil, err
	}

	return &InitializeResult{
		PaymentID:        payment.ID,
		AuthorizationURL: initResp.AuthorizationURL,
		AccessCode:       initResp.AccessCode,
		Reference:        initResp.Reference,
	}, nil
}

// VerifyResult reports the outcome of a verification call.
type VerifyResult struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	PaymentID uint            `json:"payment_id,omitempty"`
	BookingID string          `json:"booking_id,omitempty"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	Currency  string          `json:"currency,omitempty"`
	Status    string          `json:"status,omitempty"`
}

// Verify asks the gateway for a transaction's outcome and applies the
// corresponding transitions. A successful payment confirms its booking
// atomically with the payment update; the confirmation email is best-effort
// and never rolls anything back.
func (s *PaymentService) Verify(reference string) (*VerifyResult, error) {
	var payment models.Payment
	err := s.db.Preload("Booking").Where("transaction_reference = ?", reference).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	verifyResp, err := s.gateway.VerifyTransaction(reference)
	if err != nil {
		return nil, err
	}

	switch verifyResp.Status {
	case "success":
		if err := s.applySuccess(&payment, verifyResp); err != nil {
			return nil, err
		}
		go s.notifier.PaymentReceived(&payment, payment.Booking)
		go s.notifier.BookingConfirmed(payment.Booking)

		return &VerifyResult{
			Success:   true,
			Message:   "Payment verified successfully",
			PaymentID: payment.ID,
			BookingID: payment.Booking.BookingID.String(),
			Amount:    payment.Amount,
			Currency:  payment.Currency,
			Status:    payment.Status,
		}, nil

	case "failed":
		if err := s.applyFailure(&payment, verifyResp); err != nil {
			return nil, err
		}
		return &VerifyResult{
			Success:   false,
			Message:   "Payment failed",
			PaymentID: payment.ID,
			Status:    payment.Status,
		}, nil

	default:
		// pending, abandoned and friends: record the response, change nothing.
		s.db.Model(&payment).Update("gateway_response", datatypes.JSON(verifyResp.Raw))
		return &VerifyResult{
			Success:   false,
			Message:   fmt.Sprintf("Payment is %s", verifyResp.Status),
			PaymentID: payment.ID,
			Status:    verifyResp.Status,
		}, nil
	}
}

func (s *PaymentService) applySuccess(payment *models.Payment, resp *GatewayVerifyResponse) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		payment.Status = models.PaymentStatusSuccessful
		payment.PaidAt = resp.PaidAt
		payment.GatewayResponse = datatypes.JSON(resp.Raw)
		if err := tx.Model(payment).Updates(map[string]interface{}{
			"status":           payment.Status,
			"paid_at":          payment.PaidAt,
			"gateway_response": payment.GatewayResponse,
		}).Error; err != nil {
			return err
		}
		return s.bookings.ConfirmPaid(tx, payment.Booking)
	})
}

func (s *PaymentService) applyFailure(payment *models.Payment, resp *GatewayVerifyResponse) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		payment.Status = models.PaymentStatusFailed
		payment.GatewayResponse = datatypes.JSON(resp.Raw)
		if err := tx.Model(payment).Updates(map[string]interface{}{
			"status":           payment.Status,
			"gateway_response": payment.GatewayResponse,
		}).Error; err != nil {
			return err
		}
		return tx.Model(payment.Booking).
			Update("payment_status", models.BookingPaymentFailed).Error
	})
}

// WebhookEvent is the envelope a gateway webhook delivers.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleWebhook verifies the signature over the raw body and processes the
// event. Unknown events are acknowledged without action.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) (*VerifyResult, error) {
	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		return nil, errors.New("invalid webhook signature")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	var data struct {
		Reference string `json:"reference"`
	}
	_ = json.Unmarshal(event.Data, &data)

	switch event.Event {
	case "charge.success", "charge.failed":
		if data.Reference == "" {
			return nil, errors.New("webhook event missing reference")
		}
		return s.Verify(data.Reference)
	default:
		return &VerifyResult{Success: true, Message: fmt.Sprintf("Event %s received", event.Event)}, nil
	}
}

// PublicConfig exposes what the frontend needs to start a checkout.
func (s *PaymentService) PublicConfig() map[string]string {
	return map[string]string{
		"public_key":   s.gateway.PublicKey(),
		"callback_url": s.gateway.CallbackURL(),
	}
}

// gatewayCurrency maps stored currency symbols to gateway ISO codes.
func gatewayCurrency(symbol string) string {
	switch symbol {
	case "₦":
		return "NGN"
	case "$":
		return "USD"
	case "£":
		return "GBP"
	case "€":
		return "EUR"
	default:
		return "NGN"
	}
}
