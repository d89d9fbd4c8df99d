package routes

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type InitializePaymentInput struct {
	BookingID string                 `json:"booking_id" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// InitializePayment starts a gateway transaction for a booking.
func InitializePayment(ctx iris.Context) {
	var input InitializePaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	bookingID, err := uuid.Parse(input.BookingID)
	if err != nil {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"booking_id": "invalid booking id"})
		return
	}

	result, err := Payments.Initialize(bookingID, input.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{"success": false, "message": "Booking not found"})
		case errors.Is(err, services.ErrAlreadyPaid):
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{"success": false, "message": "Booking has already been paid"})
		case errors.Is(err, services.ErrBookingNotPending):
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{"success": false, "message": "Booking is not awaiting payment"})
		default:
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{"success": false, "message": err.Error()})
		}
		return
	}

	ctx.JSON(iris.Map{
		"success":           true,
		"payment_id":        result.PaymentID,
		"authorization_url": result.AuthorizationURL,
		"access_code":       result.AccessCode,
		"reference":         result.Reference,
	})
}

type VerifyPaymentInput struct {
	Reference string `json:"reference" validate:"required"`
}

// VerifyPayment checks a transaction with the gateway and applies the
// resulting transitions.
func VerifyPayment(ctx iris.Context) {
	var input VerifyPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	result, err := Payments.Verify(input.Reference)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{"success": false, "message": "Payment record not found"})
			return
		}
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": err.Error()})
		return
	}

	if !result.Success {
		ctx.StatusCode(iris.StatusBadRequest)
	}
	ctx.JSON(result)
}

// PaymentConfig hands the frontend the public key and callback URL.
func PaymentConfig(ctx iris.Context) {
	ctx.JSON(Payments.PublicConfig())
}

// PaymentWebhook receives gateway event notifications. The signature header
// is verified over the raw body before anything is processed.
func PaymentWebhook(ctx iris.Context) {
	signature := ctx.GetHeader("X-Paystack-Signature")
	if signature == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "missing signature", ctx)
		return
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "unreadable payload", ctx)
		return
	}

	result, err := Payments.HandleWebhook(payload, signature)
	if err != nil {
		if err.Error() == "invalid webhook signature" {
			utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "invalid signature", ctx)
			return
		}
		utils.CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
		return
	}

	ctx.JSON(result)
}

// ListPayments is the admin payment listing.
func ListPayments(ctx iris.Context) {
	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.Payment{})
	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var payments []models.Payment
	err := q.Preload("Booking").Order("created_at DESC").
		Limit(pageSize).Offset(offset).Find(&payments).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, payments, page, pageSize, total)
}
