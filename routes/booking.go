package routes

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type CreateBookingInput struct {
	PropertyID      string `json:"property_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	CheckIn         string `json:"check_in" validate:"required"`
	CheckOut        string `json:"check_out" validate:"required"`
	Guests          int    `json:"guests" validate:"required,min=1"`
	SpecialRequests string `json:"special_requests"`
}

// CreateBooking validates and creates a booking. Rejections come back as
// per-field errors; success returns the priced booking in pending/unpaid
// state with its opaque booking_id.
func CreateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	dateErrs := map[string]string{}
	checkIn, err := models.ParseDate(input.CheckIn)
	if err != nil {
		dateErrs["check_in"] = "invalid date, expected YYYY-MM-DD"
	}
	checkOut, err := models.ParseDate(input.CheckOut)
	if err != nil {
		dateErrs["check_out"] = "invalid date, expected YYYY-MM-DD"
	}
	if len(dateErrs) > 0 {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, dateErrs)
		return
	}

	booking, err := Bookings.Create(services.CreateBookingInput{
		PropertySlug:    input.PropertyID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          input.Guests,
		SpecialRequests: input.SpecialRequests,
	})
	if err != nil {
		if fieldErrs, ok := services.IsFieldErrors(err); ok {
			utils.CreateFieldErrors(ctx, iris.StatusBadRequest, fieldErrs)
			return
		}
		if errors.Is(err, services.ErrPropertyNotFound) {
			utils.CreateFieldErrors(ctx, iris.StatusNotFound, map[string]string{"property_id": "property not found"})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success": true,
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// ListBookings is the admin listing with status/payment_status/property/email
// filters.
func ListBookings(ctx iris.Context) {
	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.Booking{})

	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if paymentStatus := ctx.URLParam("payment_status"); paymentStatus != "" {
		q = q.Where("payment_status = ?", paymentStatus)
	}
	if email := ctx.URLParam("email"); email != "" {
		q = q.Where("LOWER(email) = LOWER(?)", email)
	}
	if propertySlug := ctx.URLParam("property_id"); propertySlug != "" {
		q = q.Joins("JOIN properties p ON p.id = bookings.property_id").
			Where("p.slug = ?", propertySlug)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var bookings []models.Booking
	err := q.Preload("Property").Order("bookings.created_at DESC").
		Limit(pageSize).Offset(offset).Find(&bookings).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, bookings, page, pageSize, total)
}

func bookingIDParam(ctx iris.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params().Get("bookingID"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid booking id", ctx)
		return uuid.Nil, false
	}
	return id, true
}

// GetBooking returns one booking by its public identifier.
func GetBooking(ctx iris.Context) {
	id, ok := bookingIDParam(ctx)
	if !ok {
		return
	}

	booking, err := Bookings.GetByBookingID(id)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(booking)
}

type CancelBookingInput struct {
	Reason string `json:"reason"`
}

// CancelBooking cancels a booking, releasing its dates. Cancelling an
// already-cancelled booking succeeds without changing anything.
func CancelBooking(ctx iris.Context) {
	id, ok := bookingIDParam(ctx)
	if !ok {
		return
	}

	var input CancelBookingInput
	_ = ctx.ReadJSON(&input) // body is optional

	booking, err := Bookings.Cancel(id, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			utils.CreateNotFound(ctx)
		case errors.Is(err, services.ErrBookingCompleted):
			utils.CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Booking cancelled successfully",
		"booking": booking,
	})
}

// CheckInBooking records client arrival (admin).
func CheckInBooking(ctx iris.Context) {
	id, ok := bookingIDParam(ctx)
	if !ok {
		return
	}

	booking, err := Bookings.CheckInGuest(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			utils.CreateNotFound(ctx)
		case errors.Is(err, services.ErrBookingCancelled),
			errors.Is(err, services.ErrAlreadyCheckedIn),
			errors.Is(err, services.ErrBookingNotConfirmed):
			utils.CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Client checked in successfully",
		"booking": booking,
	})
}

// CheckOutBooking records departure and completes the booking (admin).
func CheckOutBooking(ctx iris.Context) {
	id, ok := bookingIDParam(ctx)
	if !ok {
		return
	}

	booking, err := Bookings.CheckOutGuest(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			utils.CreateNotFound(ctx)
		case errors.Is(err, services.ErrNotCheckedIn),
			errors.Is(err, services.ErrAlreadyCheckedOut):
			utils.CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": "Client checked out successfully",
		"booking": booking,
	})
}
