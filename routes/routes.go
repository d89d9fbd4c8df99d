package routes

import (
	"strconv"

	"github.com/kataras/iris/v12"

	"github.com/Moosaa95/seqproject-backend/services"
)

// Package-level service handles, wired once from main before the server
// starts listening.
var (
	Bookings      *services.BookingService
	Payments      *services.PaymentService
	Calendars     *services.CalendarService
	Notifications *services.EmailNotificationService
)

// Initialize hands the route handlers their service dependencies.
func Initialize(bookings *services.BookingService, payments *services.PaymentService, calendars *services.CalendarService, notifications *services.EmailNotificationService) {
	Bookings = bookings
	Payments = payments
	Calendars = calendars
	Notifications = notifications
}

const (
	defaultPageSize = 10
	maxPageSize     = 1000
)

// pagination reads page/page_size query params with the API's defaults.
func pagination(ctx iris.Context) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(ctx.URLParamDefault("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(ctx.URLParamDefault("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
