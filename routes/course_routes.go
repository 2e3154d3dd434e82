package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public catalog.
	courses := api.Group("/courses")
	courses.Get("", handlers.GetCourses)
	courses.Get("/:courseId", handlers.GetCourse)
	courses.Get("/:courseId/reviews", handlers.GetCourseReviews)

	// Authoring endpoints.
	authoring := api.Group("/courses", middleware.Protected())
	authoring.Post("", middleware.TutorRequired(), handlers.CreateCourse)
	authoring.Put("/:courseId", middleware.TutorRequired(), handlers.UpdateCourse)
	authoring.Delete("/:courseId", middleware.TutorRequired(), handlers.DeleteCourse)
	authoring.Post("/:courseId/content", middleware.TutorRequired(), handlers.AddCourseContent)
	authoring.Get("/:courseId/content", handlers.GetCourseContent)
	authoring.Get("/:courseId/enrollments", middleware.TutorRequired(), handlers.GetCourseEnrollments)
	authoring.Get("/:courseId/payments", middleware.TutorRequired(), handlers.GetCoursePayments)

	// Course tasks (assignments).
	authoring.Post("/:courseId/tasks", middleware.TutorRequired(), handlers.CreateCourseTask)
}
