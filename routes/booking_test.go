package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
)

type discardSender struct{}

func (discardSender) Send([]string, string, string) error { return nil }

// rejectingGateway fails every signature check so the webhook path can be
// exercised without gateway credentials.
type rejectingGateway struct{}

func (rejectingGateway) InitializeTransaction(services.GatewayInitRequest) (*services.GatewayInitResponse, error) {
	return nil, fmt.Errorf("gateway unavailable")
}

func (rejectingGateway) VerifyTransaction(string) (*services.GatewayVerifyResponse, error) {
	return nil, fmt.Errorf("gateway unavailable")
}

func (rejectingGateway) VerifyWebhookSignature([]byte, string) bool { return false }
func (rejectingGateway) PublicKey() string                          { return "pk_test" }
func (rejectingGateway) CallbackURL() string                        { return "" }

// buildTestApp wires the public booking endpoints against an in-memory
// database, mirroring the route setup in main.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	storage.DB = db
	storage.Redis = nil

	cfg := &config.Config{MaxGuestsPerBooking: 50}
	notifications := services.NewEmailNotificationService(cfg, discardSender{})
	bookings := services.NewBookingService(db, cfg, notifications)
	payments := services.NewPaymentService(db, cfg, rejectingGateway{}, bookings, notifications)
	calendars := services.NewCalendarService(db, cfg)
	Initialize(bookings, payments, calendars, notifications)

	app := iris.New()
	app.Validator = validator.New()

	properties := app.Party("/api/properties")
	{
		properties.Get("/{slug}", GetProperty)
		properties.Get("/{slug}/booked-dates", GetBookedDates)
		properties.Get("/{slug}/availability", CheckAvailability)
		properties.Get("/{slug}/ical", ExportPropertyCalendar)
	}
	bookingsParty := app.Party("/api/bookings")
	{
		bookingsParty.Post("/", CreateBooking)
		bookingsParty.Get("/{bookingID}", GetBooking)
		bookingsParty.Post("/{bookingID}/cancel", CancelBooking)
	}
	app.Post("/api/payments/webhook", PaymentWebhook)

	externalCalendars := app.Party("/api/external-calendars")
	{
		externalCalendars.Get("/", ListExternalCalendars)
		externalCalendars.Post("/", CreateExternalCalendar)
		externalCalendars.Patch("/{id:uint}", UpdateExternalCalendar)
		externalCalendars.Delete("/{id:uint}", DeleteExternalCalendar)
		externalCalendars.Post("/{id:uint}/sync", SyncExternalCalendar)
	}
	app.Post("/api/calendars/sync-all", SyncAllCalendars)

	disputesParty := app.Party("/api/disputes")
	{
		disputesParty.Get("/", ListDisputes)
		disputesParty.Post("/", CreateDispute)
		disputesParty.Patch("/{id:uint}", UpdateDispute)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}
	return app
}

func seedTestProperty(t *testing.T, slug string) *models.Property {
	t.Helper()
	active := true
	property := &models.Property{
		Slug:     slug,
		Title:    "Ikoyi Studio",
		Location: "Ikoyi, Lagos",
		Price:    decimal.NewFromInt(40000),
		Currency: "₦",
		Status:   models.PropertyStatusRent,
		IsActive: &active,
	}
	if err := storage.DB.Create(property).Error; err != nil {
		t.Fatalf("seeding property: %v", err)
	}
	return property
}

func postJSON(app *iris.Application, path string, body interface{}) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func getJSON(app *iris.Application, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestBookingEndpointFlow(t *testing.T) {
	app := buildTestApp(t)
	seedTestProperty(t, "ikoyi-studio")

	checkIn := models.Today().AddDays(14)
	body := map[string]interface{}{
		"property_id": "ikoyi-studio",
		"name":        "Ada Obi",
		"email":       "ada@example.com",
		"check_in":    checkIn.String(),
		"check_out":   checkIn.AddDays(3).String(),
		"guests":      2,
	}

	resp := postJSON(app, "/api/bookings", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Success bool `json:"success"`
		Booking struct {
			BookingID   string `json:"booking_id"`
			Status      string `json:"status"`
			Nights      int    `json:"nights"`
			TotalAmount string `json:"total_amount"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !created.Success || created.Booking.BookingID == "" {
		t.Fatalf("unexpected create response: %s", resp.Body.String())
	}
	if created.Booking.Status != models.BookingStatusPending {
		t.Fatalf("expected pending booking, got %s", created.Booking.Status)
	}
	if created.Booking.Nights != 3 || created.Booking.TotalAmount != "120000" {
		t.Fatalf("unexpected pricing: %+v", created.Booking)
	}

	// Overlapping request is rejected with a field error.
	resp2 := postJSON(app, "/api/bookings", body)
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlap, got %d", resp2.Code)
	}
	var rejected struct {
		Success bool              `json:"success"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp2.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("decoding rejection: %v", err)
	}
	if rejected.Success || rejected.Errors["check_in"] == "" {
		t.Fatalf("expected check_in error, got %s", resp2.Body.String())
	}

	// Cancelling releases the range; the same booking then succeeds again.
	resp3 := postJSON(app, "/api/bookings/"+created.Booking.BookingID+"/cancel",
		map[string]string{"reason": "plans changed"})
	if resp3.Code != http.StatusOK {
		t.Fatalf("expected 200 on cancel, got %d: %s", resp3.Code, resp3.Body.String())
	}

	resp4 := postJSON(app, "/api/bookings", body)
	if resp4.Code != http.StatusCreated {
		t.Fatalf("expected 201 after cancel, got %d: %s", resp4.Code, resp4.Body.String())
	}
}

func TestBookingEndpointValidation(t *testing.T) {
	app := buildTestApp(t)
	seedTestProperty(t, "ikoyi-studio")

	// Missing required fields.
	resp := postJSON(app, "/api/bookings", map[string]interface{}{"property_id": "ikoyi-studio"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.Code)
	}

	// Malformed dates.
	resp2 := postJSON(app, "/api/bookings", map[string]interface{}{
		"property_id": "ikoyi-studio",
		"name":        "Ada Obi",
		"email":       "ada@example.com",
		"check_in":    "20-01-2030",
		"check_out":   "21-01-2030",
		"guests":      1,
	})
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad dates, got %d", resp2.Code)
	}
	var rejected struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp2.Body.Bytes(), &rejected); err != nil {
		t.Fatalf("decoding rejection: %v", err)
	}
	if rejected.Errors["check_in"] == "" || rejected.Errors["check_out"] == "" {
		t.Fatalf("expected date errors, got %s", resp2.Body.String())
	}

	// Unknown property.
	checkIn := models.Today().AddDays(14)
	resp3 := postJSON(app, "/api/bookings", map[string]interface{}{
		"property_id": "no-such-listing",
		"name":        "Ada Obi",
		"email":       "ada@example.com",
		"check_in":    checkIn.String(),
		"check_out":   checkIn.AddDays(2).String(),
		"guests":      1,
	})
	if resp3.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown property, got %d", resp3.Code)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	app := buildTestApp(t)
	seedTestProperty(t, "ikoyi-studio")

	// Missing params.
	resp := getJSON(app, "/api/properties/ikoyi-studio/availability")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without dates, got %d", resp.Code)
	}

	checkIn := models.Today().AddDays(14)
	query := fmt.Sprintf("?check_in=%s&check_out=%s", checkIn, checkIn.AddDays(3))

	resp2 := getJSON(app, "/api/properties/ikoyi-studio/availability"+query)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.Code)
	}
	var result struct {
		Available  bool   `json:"available"`
		PropertyID string `json:"property_id"`
	}
	if err := json.Unmarshal(resp2.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !result.Available || result.PropertyID != "ikoyi-studio" {
		t.Fatalf("expected available, got %s", resp2.Body.String())
	}

	// Book the range and ask again.
	resp3 := postJSON(app, "/api/bookings", map[string]interface{}{
		"property_id": "ikoyi-studio",
		"name":        "Ada Obi",
		"email":       "ada@example.com",
		"check_in":    checkIn.String(),
		"check_out":   checkIn.AddDays(3).String(),
		"guests":      2,
	})
	if resp3.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp3.Code)
	}

	resp4 := getJSON(app, "/api/properties/ikoyi-studio/availability"+query)
	if err := json.Unmarshal(resp4.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if result.Available {
		t.Fatalf("expected unavailable after booking")
	}

	// Unknown property.
	resp5 := getJSON(app, "/api/properties/nowhere/availability"+query)
	if resp5.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown property, got %d", resp5.Code)
	}
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	app := buildTestApp(t)

	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)

	// Missing signature header.
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without signature, got %d", resp.Code)
	}

	// Invalid signature.
	req2 := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req2.Header.Set("X-Paystack-Signature", "forged")
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", resp2.Code)
	}
}
