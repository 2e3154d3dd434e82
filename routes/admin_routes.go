package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard", handlers.GetAdminDashboard)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Get("/:userId", handlers.GetUser)
	users.Put("/:userId/role", handlers.UpdateUserRole)
	users.Put("/:userId/status", handlers.ToggleUserStatus)

	payments := admin.Group("/payments")
	payments.Get("", handlers.GetAllPayments)
	payments.Put("/:paymentId", handlers.AdminUpdatePayment)
	payments.Delete("/:paymentId", handlers.AdminDeletePayment)
}
