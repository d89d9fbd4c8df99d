package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

type ContactInquiryInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" validate:"omitempty,oneof=property management construction consultancy airbnb other"`
	Message string `json:"message" validate:"required"`
}

// CreateContactInquiry accepts a public contact-form submission and notifies
// the admin inbox asynchronously.
func CreateContactInquiry(ctx iris.Context) {
	var input ContactInquiryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	inquiry := models.ContactInquiry{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Subject: input.Subject,
		Message: input.Message,
	}
	if inquiry.Subject == "" {
		inquiry.Subject = models.SubjectOther
	}

	if err := storage.DB.Create(&inquiry).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go Notifications.ContactInquiryReceived(&inquiry)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":    true,
		"message":    "Thank you for contacting us. We will get back to you soon.",
		"inquiry_id": inquiry.ID,
	})
}

// ListContactInquiries is admin-only.
func ListContactInquiries(ctx iris.Context) {
	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.ContactInquiry{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var inquiries []models.ContactInquiry
	if err := q.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&inquiries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, inquiries, page, pageSize, total)
}

// MarkContactInquiryRead toggles the admin read flag.
func MarkContactInquiryRead(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid inquiry id", ctx)
		return
	}

	res := storage.DB.Model(&models.ContactInquiry{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

type PropertyInquiryInput struct {
	PropertyID string `json:"property_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Message    string `json:"message" validate:"required"`
}

// CreatePropertyInquiry accepts a public inquiry about one property and
// notifies the property's agent (or the admin inbox) asynchronously.
func CreatePropertyInquiry(ctx iris.Context) {
	var input PropertyInquiryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	err := storage.DB.Preload("Agent").Where("slug = ?", input.PropertyID).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateFieldErrors(ctx, iris.StatusNotFound, map[string]string{"property_id": "property not found"})
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	inquiry := models.PropertyInquiry{
		PropertyID: property.ID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
	}

	if err := storage.DB.Create(&inquiry).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	inquiry.Property = &property
	go Notifications.PropertyInquiryReceived(&inquiry)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":    true,
		"message":    "Thank you for your inquiry. Our agent will contact you soon.",
		"inquiry_id": inquiry.ID,
	})
}

// ListPropertyInquiries is admin-only, filterable by property.
func ListPropertyInquiries(ctx iris.Context) {
	page, pageSize, offset := pagination(ctx)

	q := storage.DB.Model(&models.PropertyInquiry{})
	if propertySlug := ctx.URLParam("property_id"); propertySlug != "" {
		q = q.Joins("JOIN properties p ON p.id = property_inquiries.property_id").
			Where("p.slug = ?", propertySlug)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var inquiries []models.PropertyInquiry
	err := q.Preload("Property").Order("property_inquiries.created_at DESC").
		Limit(pageSize).Offset(offset).Find(&inquiries).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, inquiries, page, pageSize, total)
}

// MarkPropertyInquiryRead toggles the admin read flag.
func MarkPropertyInquiryRead(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid inquiry id", ctx)
		return
	}

	res := storage.DB.Model(&models.PropertyInquiry{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}
