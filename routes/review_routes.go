package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func ReviewRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	reviews := api.Group("/reviews", middleware.Protected())
	reviews.Get("/mine", handlers.GetUserReviews)
	reviews.Post("", middleware.StudentRequired(), handlers.CreateReview)
	reviews.Put("/:reviewId", handlers.UpdateReview)
	reviews.Delete("/:reviewId", handlers.DeleteReview)
}
