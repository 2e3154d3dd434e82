package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", handlers.GetMe)
	profile.Put("/me", handlers.UpdateProfile)
	profile.Put("/password", handlers.ChangePassword)
	profile.Post("/picture", handlers.UploadProfilePicture)
}
