package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/Moosaa95/seqproject-backend/models"
	"github.com/Moosaa95/seqproject-backend/storage"
)

// AdminStats summarizes the dashboard counters: booking pipeline, unread
// inquiries and confirmed revenue.
func AdminStats(ctx iris.Context) {
	var activeProperties int64
	storage.DB.Model(&models.Property{}).Where("is_active = ?", true).Count(&activeProperties)

	var pendingBookings, confirmedBookings int64
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&pendingBookings)
	storage.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusConfirmed).Count(&confirmedBookings)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newBookings7, newBookings30 int64
	storage.DB.Model(&models.Booking{}).Where("created_at >= ?", since7).Count(&newBookings7)
	storage.DB.Model(&models.Booking{}).Where("created_at >= ?", since30).Count(&newBookings30)

	var unreadContact, unreadProperty int64
	storage.DB.Model(&models.ContactInquiry{}).Where("is_read = ?", false).Count(&unreadContact)
	storage.DB.Model(&models.PropertyInquiry{}).Where("is_read = ?", false).Count(&unreadProperty)

	var revenue decimal.NullDecimal
	storage.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusSuccessful).
		Select("SUM(amount)").Scan(&revenue)

	total := decimal.Zero
	if revenue.Valid {
		total = revenue.Decimal
	}

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"active_properties":  activeProperties,
			"pending_bookings":   pendingBookings,
			"confirmed_bookings": confirmedBookings,
			"new_bookings_7d":    newBookings7,
			"new_bookings_30d":   newBookings30,
			"unread_inquiries":   unreadContact + unreadProperty,
			"total_revenue":      total,
		},
	})
}
