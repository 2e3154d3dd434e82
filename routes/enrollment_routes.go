package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func EnrollmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("", handlers.GetUserEnrollments)
	enrollments.Post("", handlers.EnrollInCourse)
	enrollments.Delete("/:enrollmentId", handlers.DeleteEnrollment)
}
