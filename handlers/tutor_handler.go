package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/notifications"
	"gorm.io/gorm"
)

func GetTutorDashboard(c *fiber.Ctx) error {
	tutorID := middleware.CallerID(c)

	var courseCount int64
	database.DB.Model(&models.Course{}).Where("tutor_id = ?", tutorID).Count(&courseCount)

	var studentCount int64
	database.DB.Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.tutor_id = ?", tutorID).
		Distinct("enrollments.user_id").
		Count(&studentCount)

	var totalEarnings float64
	database.DB.Model(&models.Payment{}).
		Joins("JOIN courses ON courses.id = payments.course_id").
		Where("courses.tutor_id = ? AND payments.status = ?", tutorID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&totalEarnings)

	var pendingGrading int64
	database.DB.Model(&models.TaskSubmission{}).
		Joins("JOIN course_tasks ON course_tasks.id = task_submissions.task_id").
		Where("course_tasks.tutor_id = ? AND task_submissions.status = ?", tutorID, models.SubmissionStatusSubmitted).
		Count(&pendingGrading)

	return c.JSON(fiber.Map{
		"course_count":    courseCount,
		"student_count":   studentCount,
		"total_earnings":  totalEarnings,
		"pending_grading": pendingGrading,
	})
}

func ListTutorCourses(c *fiber.Ctx) error {
	var courses []models.Course
	err := database.DB.Preload("Tutor").
		Where("tutor_id = ?", middleware.CallerID(c)).
		Find(&courses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve courses"})
	}

	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, toCourseResponse(course))
	}
	return c.JSON(responses)
}

type CourseTaskRequest struct {
	Title            string  `json:"title" validate:"required,min=1,max=255"`
	Description      string  `json:"description" validate:"required"`
	DueDate          string  `json:"due_date" validate:"required"`
	MaxPoints        int     `json:"max_points" validate:"gt=0"`
	AllowAttachments *bool   `json:"allow_attachments"`
	Instructions     *string `json:"instructions"`
}

func CreateCourseTask(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	var req CourseTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "due_date must be RFC3339"})
	}

	tutorID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	allowAttachments := true
	if req.AllowAttachments != nil {
		allowAttachments = *req.AllowAttachments
	}

	task := models.CourseTask{
		CourseID:         course.ID,
		TutorID:          tutorID,
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          dueDate,
		MaxPoints:        req.MaxPoints,
		AllowAttachments: allowAttachments,
		Instructions:     req.Instructions,
	}

	if err := database.DB.Create(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func loadOwnedTask(c *fiber.Ctx) (*models.CourseTask, error) {
	var task models.CourseTask
	if err := database.DB.First(&task, "id = ?", c.Params("taskId")).Error; err != nil {
		return nil, err
	}
	if middleware.CallerRole(c) == "tutor" && task.TutorID.String() != middleware.CallerID(c) {
		return nil, errors.New("forbidden")
	}
	return &task, nil
}

func UpdateCourseTask(c *fiber.Ctx) error {
	task, err := loadOwnedTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this task"})
	}

	var req CourseTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "due_date must be RFC3339"})
	}

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = dueDate
	task.MaxPoints = req.MaxPoints
	task.Instructions = req.Instructions
	if req.AllowAttachments != nil {
		task.AllowAttachments = *req.AllowAttachments
	}

	if err := database.DB.Save(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	return c.JSON(task)
}

func DeleteCourseTask(c *fiber.Ctx) error {
	task, err := loadOwnedTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this task"})
	}

	// Soft-disable rather than delete so existing submissions stay visible.
	task.IsActive = false
	if err := database.DB.Save(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate task"})
	}
	return c.JSON(fiber.Map{"message": "Task deactivated successfully"})
}

func ListTaskSubmissions(c *fiber.Ctx) error {
	task, err := loadOwnedTask(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this task"})
	}

	var submissions []models.TaskSubmission
	err = database.DB.Preload("Student").Preload("Attachments").
		Where("task_id = ? AND status != ?", task.ID, models.SubmissionStatusDraft).
		Find(&submissions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve submissions"})
	}
	return c.JSON(submissions)
}

type GradeSubmissionRequest struct {
	PointsEarned  int     `json:"points_earned" validate:"gte=0"`
	TutorFeedback *string `json:"tutor_feedback"`
}

func GradeSubmission(c *fiber.Ctx) error {
	var submission models.TaskSubmission
	err := database.DB.Preload("Task").Preload("Student").
		First(&submission, "id = ?", c.Params("submissionId")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if middleware.CallerRole(c) == "tutor" && submission.Task.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this task"})
	}
	if submission.Status != models.SubmissionStatusSubmitted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only submitted work can be graded"})
	}

	var req GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.PointsEarned > submission.Task.MaxPoints {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("points_earned exceeds max_points (%d)", submission.Task.MaxPoints)})
	}

	graderID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	now := time.Now()
	submission.PointsEarned = &req.PointsEarned
	submission.TutorFeedback = req.TutorFeedback
	submission.GradedByID = &graderID
	submission.GradedAt = &now
	submission.Status = models.SubmissionStatusGraded

	if err := database.DB.Save(&submission).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grade submission"})
	}

	go notifications.SendEmail(submission.Student.FullName, submission.Student.Email,
		"Your Assignment Has Been Graded",
		fmt.Sprintf("<h1>Assignment Graded</h1><p>Your submission for <b>%s</b> scored %d/%d.</p>",
			submission.Task.Title, req.PointsEarned, submission.Task.MaxPoints))

	return c.JSON(submission)
}
