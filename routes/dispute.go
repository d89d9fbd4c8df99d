package routes

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type DisputeInput struct {
	BookingID   string `json:"booking_id" validate:"required"`
	DisputeType string `json:"dispute_type" validate:"required,oneof=no_show cancellation early_checkout damage refund other"`
	Description string `json:"description" validate:"required"`
}

// CreateDispute opens a dispute against a booking (staff).
func CreateDispute(ctx iris.Context) {
	var input DisputeInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	bookingID, err := uuid.Parse(input.BookingID)
	if err != nil {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"booking_id": "invalid booking id"})
		return
	}

	var booking models.Booking
	err = storage.DB.Where("booking_id = ?", bookingID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	dispute := models.BookingDispute{
		BookingRef:  booking.ID,
		DisputeType: input.DisputeType,
		Status:      models.DisputeStatusOpen,
		Description: input.Description,
	}
	if err := storage.DB.Create(&dispute).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	dispute.Booking = &booking
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(dispute)
}

// ListDisputes is the staff dispute queue, filterable by status, type and
// booking.
func ListDisputes(ctx iris.Context) {
	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.BookingDispute{})
	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("booking_disputes.status = ?", status)
	}
	if disputeType := ctx.URLParam("dispute_type"); disputeType != "" {
		q = q.Where("dispute_type = ?", disputeType)
	}
	if bookingID := ctx.URLParam("booking_id"); bookingID != "" {
		q = q.Joins("JOIN bookings b ON b.id = booking_disputes.booking_id").
			Where("b.booking_id = ?", bookingID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var disputes []models.BookingDispute
	err := q.Preload("Booking").Order("booking_disputes.created_at DESC").
		Limit(pageSize).Offset(offset).Find(&disputes).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, disputes, page, pageSize, total)
}

type DisputeUpdateInput struct {
	Status     string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolved_by"`
}

// UpdateDispute advances a dispute through its lifecycle; moving it to
// resolved or closed stamps the resolution time.
func UpdateDispute(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid dispute id", ctx)
		return
	}

	var dispute models.BookingDispute
	if err := storage.DB.First(&dispute, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	var input DisputeUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Status != "" {
		updates["status"] = input.Status
		dispute.Status = input.Status
	}
	if input.Resolution != "" {
		updates["resolution"] = input.Resolution
		dispute.Resolution = input.Resolution
	}
	if input.ResolvedBy != "" {
		updates["resolved_by"] = input.ResolvedBy
		dispute.ResolvedBy = input.ResolvedBy
	}
	if (dispute.Status == models.DisputeStatusResolved || dispute.Status == models.DisputeStatusClosed) &&
		dispute.ResolvedAt == nil {
		now := time.Now()
		updates["resolved_at"] = now
		dispute.ResolvedAt = &now
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(&dispute).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(dispute)
}
