package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// The webhook is unauthenticated; the HMAC signature is the auth.
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)

	payments := api.Group("/payments", middleware.Protected())
	payments.Post("/initiate", middleware.StudentRequired(), handlers.InitiatePayment)
	payments.Get("/mine", handlers.GetUserPayments)
	payments.Get("/:paymentId", handlers.GetPayment)
}
