package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func TutorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	tutor := api.Group("/tutor", middleware.Protected(), middleware.TutorRequired())

	tutor.Get("/dashboard", handlers.GetTutorDashboard)
	tutor.Get("/courses", handlers.ListTutorCourses)

	tasks := tutor.Group("/tasks")
	tasks.Put("/:taskId", handlers.UpdateCourseTask)
	tasks.Delete("/:taskId", handlers.DeleteCourseTask)
	tasks.Get("/:taskId/submissions", handlers.ListTaskSubmissions)

	tutor.Put("/submissions/:submissionId/grade", handlers.GradeSubmission)
}
