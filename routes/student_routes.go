package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/handlers"
	"github.com/obinna925/course_management/middleware"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	student := api.Group("/student", middleware.Protected(), middleware.StudentRequired())

	student.Get("/dashboard", handlers.GetStudentDashboard)
	student.Get("/courses/available", handlers.GetAvailableCourses)
	student.Get("/courses/:courseId", handlers.GetStudentCourseDetails)
	student.Post("/progress", handlers.UpdateProgress)
	student.Get("/certificates", handlers.GetStudentCertificates)

	// Personal study tasks.
	tasks := student.Group("/tasks")
	tasks.Get("", handlers.ListStudentTasks)
	tasks.Post("", handlers.CreateStudentTask)
	tasks.Get("/summary", handlers.GetStudentTaskSummary)
	tasks.Get("/:taskId", handlers.GetStudentTask)
	tasks.Put("/:taskId", handlers.UpdateStudentTask)
	tasks.Delete("/:taskId", handlers.DeleteStudentTask)
	tasks.Put("/:taskId/complete", handlers.CompleteStudentTask)

	// Course assignments.
	assignments := student.Group("/assignments")
	assignments.Get("", handlers.ListCourseTasksForStudent)
	assignments.Post("/:taskId/submit", handlers.SubmitTask)
	assignments.Get("/:taskId/submission", handlers.GetTaskSubmission)
}
