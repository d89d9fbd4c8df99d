package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

// ExportPropertyCalendar serves a property's bookings and blocks as an iCal
// feed, consumable by Airbnb, Booking.com and friends.
func ExportPropertyCalendar(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	payload, filename, err := Calendars.ExportProperty(slug)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.ContentType("text/calendar; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.WriteString(payload)
}

// ListExternalCalendars is admin-only, filterable by property.
func ListExternalCalendars(ctx iris.Context) {
	q := storage.DB.Model(&models.ExternalCalendar{})
	if propertySlug := ctx.URLParam("property_id"); propertySlug != "" {
		q = q.Joins("JOIN properties p ON p.id = external_calendars.property_id").
			Where("p.slug = ?", propertySlug)
	}

	var calendars []models.ExternalCalendar
	err := q.Preload("Property").Order("external_calendars.created_at DESC").Find(&calendars).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(calendars)
}

type ExternalCalendarInput struct {
	PropertyID string `json:"property_id" validate:"required"`
	Source     string `json:"source" validate:"required,oneof=airbnb booking_com vrbo other"`
	ICalURL    string `json:"ical_url" validate:"required,url"`
	IsActive   *bool  `json:"is_active"`
}

// CreateExternalCalendar registers a feed to import for a property (admin
// only). One feed per property and source.
func CreateExternalCalendar(ctx iris.Context) {
	var input ExternalCalendarInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	err := storage.DB.Where("slug = ?", input.PropertyID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateFieldErrors(ctx, iris.StatusNotFound, map[string]string{"property_id": "property not found"})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	var existing int64
	storage.DB.Model(&models.ExternalCalendar{}).
		Where("property_id = ? AND source = ?", property.ID, input.Source).
		Count(&existing)
	if existing > 0 {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{
			"source": "a calendar for this source already exists on the property",
		})
		return
	}

	calendar := models.ExternalCalendar{
		PropertyID: property.ID,
		Source:     input.Source,
		ICalURL:    input.ICalURL,
		IsActive:   input.IsActive,
	}
	if err := storage.DB.Create(&calendar).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(calendar)
}

type ExternalCalendarUpdateInput struct {
	ICalURL  string `json:"ical_url" validate:"omitempty,url"`
	IsActive *bool  `json:"is_active"`
}

// UpdateExternalCalendar changes a feed's URL or toggles it (admin only).
func UpdateExternalCalendar(ctx iris.Context) {
	calendar, ok := externalCalendarParam(ctx)
	if !ok {
		return
	}

	var input ExternalCalendarUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.ICalURL != "" {
		updates["ical_url"] = input.ICalURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := storage.DB.Model(calendar).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(calendar)
}

// DeleteExternalCalendar removes a feed together with the blocks it imported
// (admin only).
func DeleteExternalCalendar(ctx iris.Context) {
	calendar, ok := externalCalendarParam(ctx)
	if !ok {
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_calendar_id = ?", calendar.ID).
			Delete(&models.BlockedDate{}).Error; err != nil {
			return err
		}
		return tx.Delete(calendar).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.StatusCode(iris.StatusNoContent)
}

// SyncExternalCalendar triggers one feed import (admin only).
func SyncExternalCalendar(ctx iris.Context) {
	calendar, ok := externalCalendarParam(ctx)
	if !ok {
		return
	}

	result, err := Calendars.Sync(calendar)
	if err != nil {
		ctx.StatusCode(iris.StatusBadGateway)
		ctx.JSON(iris.Map{"success": false, "error": err.Error()})
		return
	}
	ctx.JSON(iris.Map{"success": true, "result": result})
}

// SyncAllCalendars imports every active feed (admin only).
func SyncAllCalendars(ctx iris.Context) {
	reports, err := Calendars.SyncAll()
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "results": reports})
}

func externalCalendarParam(ctx iris.Context) (*models.ExternalCalendar, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid calendar id", ctx)
		return nil, false
	}

	var calendar models.ExternalCalendar
	if err := storage.DB.First(&calendar, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return nil, false
		}
		utils.CreateInternalServerError(ctx)
		return nil, false
	}
	return &calendar, true
}
