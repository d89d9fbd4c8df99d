package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type BlockedDateInput struct {
	PropertyID string `json:"property_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Notes      string `json:"notes"`
}

// CreateBlockedDate blocks a [start_date, end_date) range on a property
// (admin only). Blocked ranges behave like non-cancelled bookings in
// availability checks.
func CreateBlockedDate(ctx iris.Context) {
	var input BlockedDateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errs := map[string]string{}
	start, err := models.ParseDate(input.StartDate)
	if err != nil {
		errs["start_date"] = "invalid date, expected YYYY-MM-DD"
	}
	end, err := models.ParseDate(input.EndDate)
	if err != nil {
		errs["end_date"] = "invalid date, expected YYYY-MM-DD"
	}
	if len(errs) == 0 && !end.After(start.Time) {
		errs["end_date"] = "end date must be after start date"
	}
	if len(errs) > 0 {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, errs)
		return
	}

	var property models.Property
	err = storage.DB.Where("slug = ?", input.PropertyID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateFieldErrors(ctx, iris.StatusNotFound, map[string]string{"property_id": "property not found"})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	block := models.BlockedDate{
		PropertyID: property.ID,
		StartDate:  start,
		EndDate:    end,
		Notes:      input.Notes,
	}
	if err := storage.DB.Create(&block).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(block)
}

// ListBlockedDates is admin-only, filterable by property.
func ListBlockedDates(ctx iris.Context) {
	q := storage.DB.Model(&models.BlockedDate{})
	if propertySlug := ctx.URLParam("property_id"); propertySlug != "" {
		q = q.Joins("JOIN properties p ON p.id = blocked_dates.property_id").
			Where("p.slug = ?", propertySlug)
	}

	var blocks []models.BlockedDate
	if err := q.Order("start_date ASC").Find(&blocks).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(blocks)
}

// DeleteBlockedDate lifts a block (admin only).
func DeleteBlockedDate(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid block id", ctx)
		return
	}

	res := storage.DB.Delete(&models.BlockedDate{}, id)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}
