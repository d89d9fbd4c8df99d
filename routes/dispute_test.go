package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"github.com/Moosaa95/seqproject-backend/models"
)

func createBookingForDispute(t *testing.T, app *iris.Application) string {
	t.Helper()

	checkIn := models.Today().AddDays(14)
	resp := postJSON(app, "/api/bookings", map[string]interface{}{
		"property_id": "ikoyi-studio",
		"name":        "Ada Obi",
		"email":       "ada@example.com",
		"check_in":    checkIn.String(),
		"check_out":   checkIn.AddDays(3).String(),
		"guests":      2,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Booking struct {
			BookingID string `json:"booking_id"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding booking: %v", err)
	}
	return created.Booking.BookingID
}

func TestDisputeLifecycle(t *testing.T) {
	app := buildTestApp(t)
	seedTestProperty(t, "ikoyi-studio")
	bookingID := createBookingForDispute(t, app)

	resp := postJSON(app, "/api/disputes", map[string]interface{}{
		"booking_id":   bookingID,
		"dispute_type": models.DisputeTypeDamage,
		"description":  "Broken glass table reported at check-out",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var dispute models.BookingDispute
	if err := json.Unmarshal(resp.Body.Bytes(), &dispute); err != nil {
		t.Fatalf("decoding dispute: %v", err)
	}
	if dispute.Status != models.DisputeStatusOpen {
		t.Fatalf("expected open dispute, got %s", dispute.Status)
	}
	if dispute.ResolvedAt != nil {
		t.Fatalf("new dispute must not be resolved")
	}

	// Filterable staff queue.
	resp2 := getJSON(app, "/api/disputes?status=open&booking_id="+bookingID)
	if resp2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.Code)
	}
	var listed struct {
		Data []models.BookingDispute `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(resp2.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if listed.Meta.Total != 1 || len(listed.Data) != 1 {
		t.Fatalf("expected one open dispute, got %s", resp2.Body.String())
	}

	// Resolving stamps the resolution time.
	resp3 := patchJSON(app, fmt.Sprintf("/api/disputes/%d", dispute.ID), map[string]interface{}{
		"status":      models.DisputeStatusResolved,
		"resolution":  "Refunded cost of the table",
		"resolved_by": "admin@sequoiaprojects.com",
	})
	if resp3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp3.Code, resp3.Body.String())
	}
	var resolved models.BookingDispute
	if err := json.Unmarshal(resp3.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("decoding resolved dispute: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolved || resolved.ResolvedAt == nil {
		t.Fatalf("expected resolved with timestamp, got %s", resp3.Body.String())
	}

	resp4 := getJSON(app, "/api/disputes?status=open")
	if err := json.Unmarshal(resp4.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if listed.Meta.Total != 0 {
		t.Fatalf("expected no open disputes left, got %d", listed.Meta.Total)
	}
}

func TestDisputeValidation(t *testing.T) {
	app := buildTestApp(t)
	seedTestProperty(t, "ikoyi-studio")
	bookingID := createBookingForDispute(t, app)

	// Unknown booking.
	resp := postJSON(app, "/api/disputes", map[string]interface{}{
		"booking_id":   uuid.NewString(),
		"dispute_type": models.DisputeTypeRefund,
		"description":  "Never arrived",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown booking, got %d", resp.Code)
	}

	// Malformed booking id.
	resp2 := postJSON(app, "/api/disputes", map[string]interface{}{
		"booking_id":   "not-a-uuid",
		"dispute_type": models.DisputeTypeRefund,
		"description":  "Never arrived",
	})
	if resp2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp2.Code)
	}

	// Unsupported type.
	resp3 := postJSON(app, "/api/disputes", map[string]interface{}{
		"booking_id":   bookingID,
		"dispute_type": "vibes",
		"description":  "Unclear",
	})
	if resp3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type, got %d", resp3.Code)
	}

	// Lifecycle updates only accept known states.
	created := postJSON(app, "/api/disputes", map[string]interface{}{
		"booking_id":   bookingID,
		"dispute_type": models.DisputeTypeNoShow,
		"description":  "Guest never checked in",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.Code)
	}
	var dispute models.BookingDispute
	if err := json.Unmarshal(created.Body.Bytes(), &dispute); err != nil {
		t.Fatalf("decoding dispute: %v", err)
	}

	resp4 := patchJSON(app, fmt.Sprintf("/api/disputes/%d", dispute.ID), map[string]interface{}{
		"status": "escalated-to-court",
	})
	if resp4.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp4.Code)
	}
}
