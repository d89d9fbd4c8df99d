package main

import (
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/routes"
	"github.com/Moosaa95/seqproject-backend/services"
	"github.com/Moosaa95/seqproject-backend/storage"
	"github.com/Moosaa95/seqproject-backend/utils"
)

func main() {
	cfg := config.Load()

	storage.InitializeDB(cfg.DBConnectionString)
	storage.InitializeRedis(cfg.RedisURL)

	notifications := services.NewEmailNotificationService(cfg, services.NewSMTPSender(cfg))
	bookings := services.NewBookingService(storage.DB, cfg, notifications)
	payments := services.NewPaymentService(storage.DB, cfg, services.NewPaystackGateway(cfg), bookings, notifications)
	calendars := services.NewCalendarService(storage.DB, cfg)
	routes.Initialize(bookings, payments, calendars, notifications)

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the frontend and admin console
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Paystack-Signature")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	app.Get("/api/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"status":    "healthy",
			"message":   "Sequoia Projects API is running successfully",
			"timestamp": time.Now().UTC(),
		})
	})

	properties := app.Party("/api/properties")
	{
		properties.Get("/", routes.ListProperties)
		properties.Get("/{slug}", routes.GetProperty)
		properties.Get("/{slug}/booked-dates", routes.GetBookedDates)
		properties.Get("/{slug}/availability", routes.CheckAvailability)
		properties.Get("/{slug}/ical", routes.ExportPropertyCalendar)
		properties.Post("/", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.CreateProperty)
		properties.Put("/{slug}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.UpdateProperty)
		properties.Delete("/{slug}", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.DeleteProperty)
	}

	bookingsParty := app.Party("/api/bookings")
	{
		bookingsParty.Post("/", routes.CreateBooking)
		bookingsParty.Get("/", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.ListBookings)
		bookingsParty.Get("/{bookingID}", routes.GetBooking)
		bookingsParty.Post("/{bookingID}/cancel", routes.CancelBooking)
		bookingsParty.Post("/{bookingID}/check-in", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.CheckInBooking)
		bookingsParty.Post("/{bookingID}/check-out", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.CheckOutBooking)
	}

	paymentsParty := app.Party("/api/payments")
	{
		paymentsParty.Post("/initialize", routes.InitializePayment)
		paymentsParty.Post("/verify", routes.VerifyPayment)
		paymentsParty.Get("/config", routes.PaymentConfig)
		paymentsParty.Post("/webhook", routes.PaymentWebhook)
		paymentsParty.Get("/", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.ListPayments)
	}

	contactInquiries := app.Party("/api/contact-inquiries")
	{
		contactInquiries.Post("/", routes.CreateContactInquiry)
		contactInquiries.Get("/", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.ListContactInquiries)
		contactInquiries.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.MarkContactInquiryRead)
	}

	propertyInquiries := app.Party("/api/property-inquiries")
	{
		propertyInquiries.Post("/", routes.CreatePropertyInquiry)
		propertyInquiries.Get("/", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.ListPropertyInquiries)
		propertyInquiries.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.MarkPropertyInquiryRead)
	}

	agents := app.Party("/api/agents")
	{
		agents.Get("/", routes.ListAgents)
		agents.Get("/{id:uint}", routes.GetAgent)
		agents.Post("/", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.CreateAgent)
	}

	blockedDates := app.Party("/api/blocked-dates", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware)
	{
		blockedDates.Get("/", routes.ListBlockedDates)
		blockedDates.Post("/", routes.CreateBlockedDate)
		blockedDates.Delete("/{id:uint}", routes.DeleteBlockedDate)
	}

	externalCalendars := app.Party("/api/external-calendars", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware)
	{
		externalCalendars.Get("/", routes.ListExternalCalendars)
		externalCalendars.Post("/", routes.CreateExternalCalendar)
		externalCalendars.Patch("/{id:uint}", routes.UpdateExternalCalendar)
		externalCalendars.Delete("/{id:uint}", routes.DeleteExternalCalendar)
		externalCalendars.Post("/{id:uint}/sync", routes.SyncExternalCalendar)
	}
	app.Post("/api/calendars/sync-all", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware, routes.SyncAllCalendars)

	disputes := app.Party("/api/disputes", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware)
	{
		disputes.Get("/", routes.ListDisputes)
		disputes.Post("/", routes.CreateDispute)
		disputes.Patch("/{id:uint}", routes.UpdateDispute)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/stats", routes.AdminStats)
	}

	app.Post("/api/auth/login", routes.Login)
	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	addr := ":" + cfg.Port
	log.Println("Starting server on", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
