package routes

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

var bgCtx = context.Background()

const propertyCachePrefix = "properties:"
const propertyCacheTTL = 60 * time.Second

// ListProperties returns active properties with the public filter set:
// status, type, entity, featured, min_price/max_price, bedrooms/bathrooms
// (at-least), search over title/location/description, and pagination.
// Responses are cached in Redis keyed by the raw query string.
func ListProperties(ctx iris.Context) {
	cacheKey := propertyCachePrefix + ctx.Request().URL.RawQuery
	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(bgCtx, cacheKey).Result(); err == nil {
			ctx.ContentType("application/json")
			ctx.WriteString(cached)
			return
		}
	}

	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.Property{}).Where("is_active = ?", true)

	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if propType := ctx.URLParam("type"); propType != "" {
		q = q.Where("type ILIKE ?", "%"+propType+"%")
	}
	if entity := ctx.URLParam("entity"); entity != "" {
		q = q.Where("entity ILIKE ?", "%"+entity+"%")
	}
	if featured := ctx.URLParam("featured"); featured != "" {
		q = q.Where("featured = ?", strings.EqualFold(featured, "true"))
	}
	if minPrice := ctx.URLParam("min_price"); minPrice != "" {
		if v, err := decimal.NewFromString(minPrice); err == nil {
			q = q.Where("price >= ?", v)
		}
	}
	if maxPrice := ctx.URLParam("max_price"); maxPrice != "" {
		if v, err := decimal.NewFromString(maxPrice); err == nil {
			q = q.Where("price <= ?", v)
		}
	}
	if bedrooms, err := ctx.URLParamInt("bedrooms"); err == nil {
		q = q.Where("bedrooms >= ?", bedrooms)
	}
	if bathrooms, err := ctx.URLParamInt("bathrooms"); err == nil {
		q = q.Where("bathrooms >= ?", bathrooms)
	}
	if search := ctx.URLParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("title ILIKE ? OR location ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var properties []models.Property
	err := q.Preload("Images").Preload("Agent").
		Order("featured DESC, created_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&properties).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if storage.Redis != nil {
		body := iris.Map{
			"data": properties,
			"meta": utils.PageMeta{Page: page, PageSize: pageSize, Total: total},
		}
		if encoded, err := json.Marshal(body); err == nil {
			storage.Redis.Set(bgCtx, cacheKey, encoded, propertyCacheTTL)
		}
	}

	utils.JSONPage(ctx, properties, page, pageSize, total)
}

func invalidatePropertyCache() {
	if storage.Redis == nil {
		return
	}
	keys, err := storage.Redis.Keys(bgCtx, propertyCachePrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := storage.Redis.Del(bgCtx, keys...).Err(); err != nil {
		log.Printf("failed to invalidate property cache: %v", err)
	}
}

// GetProperty returns a single property by slug. Inactive properties are
// hidden from the public endpoint.
func GetProperty(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var property models.Property
	err := storage.DB.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("property_images.order ASC, property_images.is_primary DESC")
	}).Preload("Agent").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

type PropertyInput struct {
	Slug          string          `json:"slug"`
	Title         string          `json:"title" validate:"required"`
	Location      string          `json:"location" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status" validate:"omitempty,oneof=rent sale"`
	Type          string          `json:"type"`
	Area          *int            `json:"area"`
	Guests        *int            `json:"guests" validate:"omitempty,min=1"`
	Bedrooms      int             `json:"bedrooms" validate:"min=0"`
	Bathrooms     int             `json:"bathrooms" validate:"min=0"`
	LivingRooms   int             `json:"living_rooms" validate:"min=0"`
	Garages       *int            `json:"garages"`
	Units         *int            `json:"units"`
	Description   string          `json:"description"`
	Amenities     []string        `json:"amenities"`
	Entity        string          `json:"entity"`
	AgentID       *uint           `json:"agent_id"`
	Featured      bool            `json:"featured"`
	IsActive      *bool           `json:"is_active"`
	AvailableFrom string          `json:"available_from"`
}

// CreateProperty adds a listing (admin only).
func CreateProperty(ctx iris.Context) {
	var input PropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Price.IsNegative() {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"price": "price must not be negative"})
		return
	}

	property := models.Property{
		Slug:        input.Slug,
		Title:       input.Title,
		Location:    input.Location,
		Price:       input.Price,
		Currency:    input.Currency,
		Status:      input.Status,
		Type:        input.Type,
		Area:        input.Area,
		Guests:      input.Guests,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		LivingRooms: input.LivingRooms,
		Garages:     input.Garages,
		Units:       input.Units,
		Description: input.Description,
		Entity:      input.Entity,
		AgentID:     input.AgentID,
		Featured:    input.Featured,
		IsActive:    input.IsActive,
	}

	if property.Slug == "" {
		property.Slug = models.Slugify(input.Title)
	}
	if property.Currency == "" {
		property.Currency = "₦"
	}
	if property.Status == "" {
		property.Status = models.PropertyStatusRent
	}
	if input.Amenities != nil {
		encoded, err := json.Marshal(input.Amenities)
		if err == nil {
			property.Amenities = datatypes.JSON(encoded)
		}
	}
	if input.AvailableFrom != "" {
		date, err := models.ParseDate(input.AvailableFrom)
		if err != nil {
			utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"available_from": "invalid date, expected YYYY-MM-DD"})
			return
		}
		property.AvailableFrom = &date
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	invalidatePropertyCache()
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

// UpdateProperty modifies a listing (admin only).
func UpdateProperty(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var property models.Property
	if err := storage.DB.Where("slug = ?", slug).First(&property).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input PropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Price.IsNegative() {
		utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"price": "price must not be negative"})
		return
	}

	property.Title = input.Title
	property.Location = input.Location
	property.Price = input.Price
	property.Type = input.Type
	property.Area = input.Area
	property.Guests = input.Guests
	property.Bedrooms = input.Bedrooms
	property.Bathrooms = input.Bathrooms
	property.LivingRooms = input.LivingRooms
	property.Garages = input.Garages
	property.Units = input.Units
	property.Description = input.Description
	property.Entity = input.Entity
	property.AgentID = input.AgentID
	property.Featured = input.Featured
	if input.Currency != "" {
		property.Currency = input.Currency
	}
	if input.Status != "" {
		property.Status = input.Status
	}
	if input.IsActive != nil {
		property.IsActive = input.IsActive
	}
	if input.Amenities != nil {
		if encoded, err := json.Marshal(input.Amenities); err == nil {
			property.Amenities = datatypes.JSON(encoded)
		}
	}
	if input.AvailableFrom != "" {
		date, err := models.ParseDate(input.AvailableFrom)
		if err != nil {
			utils.CreateFieldErrors(ctx, iris.StatusBadRequest, map[string]string{"available_from": "invalid date, expected YYYY-MM-DD"})
			return
		}
		property.AvailableFrom = &date
	}

	if err := storage.DB.Save(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	invalidatePropertyCache()
	ctx.JSON(property)
}

// DeleteProperty removes a listing (admin only).
func DeleteProperty(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	res := storage.DB.Where("slug = ?", slug).Delete(&models.Property{})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	invalidatePropertyCache()
	ctx.StatusCode(iris.StatusNoContent)
}

// GetBookedDates returns the unavailable ranges for a property as
// [{"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"}, ...].
func GetBookedDates(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var property models.Property
	if err := storage.DB.Where("slug = ?", slug).First(&property).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ranges, err := Bookings.BookedRanges(property.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(ranges)
}

// CheckAvailability answers whether a property is free for
// ?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD.
func CheckAvailability(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	checkInStr := ctx.URLParam("check_in")
	checkOutStr := ctx.URLParam("check_out")
	if checkInStr == "" || checkOutStr == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "check_in and check_out dates are required", ctx)
		return
	}

	checkIn, err := models.ParseDate(checkInStr)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid date format, use YYYY-MM-DD", ctx)
		return
	}
	checkOut, err := models.ParseDate(checkOutStr)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid date format, use YYYY-MM-DD", ctx)
		return
	}

	available, err := Bookings.IsAvailable(slug, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			utils.CreateNotFound(ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"available":   available,
		"property_id": slug,
		"check_in":    checkInStr,
		"check_out":   checkOutStr,
	})
}
