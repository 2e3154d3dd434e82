package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"gorm.io/gorm"
)

type StudentTaskRequest struct {
	Title                string  `json:"title" validate:"required,min=1,max=200"`
	Description          *string `json:"description" validate:"omitempty,max=1000"`
	Category             string  `json:"category" validate:"required,oneof=study practice review project other"`
	Priority             string  `json:"priority" validate:"required,oneof=low medium high"`
	DueDate              *string `json:"due_date"`
	EstimatedTimeMinutes *int    `json:"estimated_time_minutes" validate:"omitempty,gt=0"`
}

func ListStudentTasks(c *fiber.Ctx) error {
	query := database.DB.Where("student_id = ?", middleware.CallerID(c))

	switch c.Query("status") {
	case "completed":
		query = query.Where("is_completed = ?", true)
	case "pending":
		query = query.Where("is_completed = ?", false)
	}

	var tasks []models.StudentTask
	if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tasks"})
	}
	return c.JSON(tasks)
}

func GetStudentTask(c *fiber.Ctx) error {
	var task models.StudentTask
	err := database.DB.
		Where("id = ? AND student_id = ?", c.Params("taskId"), middleware.CallerID(c)).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(task)
}

func CreateStudentTask(c *fiber.Ctx) error {
	var req StudentTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	studentID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	task := models.StudentTask{
		StudentID:            studentID,
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Priority:             req.Priority,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
	}
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "due_date must be RFC3339"})
		}
		task.DueDate = &due
	}

	if err := database.DB.Create(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func UpdateStudentTask(c *fiber.Ctx) error {
	var task models.StudentTask
	err := database.DB.
		Where("id = ? AND student_id = ?", c.Params("taskId"), middleware.CallerID(c)).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var req StudentTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Category = req.Category
	task.Priority = req.Priority
	task.EstimatedTimeMinutes = req.EstimatedTimeMinutes
	if req.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "due_date must be RFC3339"})
		}
		task.DueDate = &due
	} else {
		task.DueDate = nil
	}

	if err := database.DB.Save(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	return c.JSON(task)
}

func DeleteStudentTask(c *fiber.Ctx) error {
	res := database.DB.
		Where("id = ? AND student_id = ?", c.Params("taskId"), middleware.CallerID(c)).
		Delete(&models.StudentTask{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

func CompleteStudentTask(c *fiber.Ctx) error {
	var task models.StudentTask
	err := database.DB.
		Where("id = ? AND student_id = ?", c.Params("taskId"), middleware.CallerID(c)).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	now := time.Now()
	task.IsCompleted = !task.IsCompleted
	if task.IsCompleted {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	if err := database.DB.Save(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	return c.JSON(task)
}

func GetStudentTaskSummary(c *fiber.Ctx) error {
	studentID := middleware.CallerID(c)

	var total, completed, overdue int64
	database.DB.Model(&models.StudentTask{}).Where("student_id = ?", studentID).Count(&total)
	database.DB.Model(&models.StudentTask{}).
		Where("student_id = ? AND is_completed = ?", studentID, true).
		Count(&completed)
	database.DB.Model(&models.StudentTask{}).
		Where("student_id = ? AND is_completed = ? AND due_date < ?", studentID, false, time.Now()).
		Count(&overdue)

	return c.JSON(fiber.Map{
		"total":     total,
		"completed": completed,
		"pending":   total - completed,
		"overdue":   overdue,
	})
}

// ListCourseTasksForStudent returns the active assignments across the
// student's enrolled courses, with the student's own submission status.
func ListCourseTasksForStudent(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)

	var tasks []models.CourseTask
	err := database.DB.Preload("Course").
		Where("is_active = ?", true).
		Where("course_id IN (?)",
			database.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", userID)).
		Order("due_date asc").
		Find(&tasks).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tasks"})
	}

	type taskWithSubmission struct {
		models.CourseTask
		SubmissionStatus string `json:"submission_status"`
	}
	result := make([]taskWithSubmission, 0, len(tasks))
	for _, task := range tasks {
		status := "not_submitted"
		var submission models.TaskSubmission
		if err := database.DB.Where("task_id = ? AND student_id = ?", task.ID, userID).First(&submission).Error; err == nil {
			status = submission.Status
		}
		result = append(result, taskWithSubmission{CourseTask: task, SubmissionStatus: status})
	}
	return c.JSON(result)
}

type SubmitTaskRequest struct {
	SubmissionText string `json:"submission_text" validate:"required,min=1"`
	Attachments    []struct {
		FileName      string `json:"file_name" validate:"required"`
		FileURL       string `json:"file_url" validate:"required,url"`
		ContentType   string `json:"content_type"`
		FileSizeBytes int64  `json:"file_size_bytes"`
	} `json:"attachments" validate:"dive"`
}

func SubmitTask(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	userID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	var task models.CourseTask
	if err := database.DB.First(&task, "id = ? AND is_active = ?", taskID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var enrolled int64
	database.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, task.CourseID).
		Count(&enrolled)
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not enrolled in this course"})
	}

	var req SubmitTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Attachments) > 0 && !task.AllowAttachments {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This task does not accept attachments"})
	}

	now := time.Now()
	var submission models.TaskSubmission

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("task_id = ? AND student_id = ?", task.ID, userID).First(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			submission = models.TaskSubmission{
				TaskID:    task.ID,
				StudentID: userID,
			}
		} else if err != nil {
			return err
		}

		if submission.Status == models.SubmissionStatusGraded {
			return errors.New("already graded")
		}

		submission.SubmissionText = &req.SubmissionText
		submission.Status = models.SubmissionStatusSubmitted
		submission.SubmittedAt = &now
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		for _, a := range req.Attachments {
			contentType := a.ContentType
			attachment := models.TaskAttachment{
				TaskSubmissionID: submission.ID,
				UploadedByID:     userID,
				FileName:         a.FileName,
				FileURL:          a.FileURL,
				ContentType:      &contentType,
				FileSizeBytes:    a.FileSizeBytes,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err.Error() == "already graded" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This submission has already been graded"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit task"})
	}

	return c.Status(fiber.StatusCreated).JSON(submission)
}

func GetTaskSubmission(c *fiber.Ctx) error {
	var submission models.TaskSubmission
	err := database.DB.Preload("Attachments").
		Where("task_id = ? AND student_id = ?", c.Params("taskId"), middleware.CallerID(c)).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No submission found for this task"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(submission)
}
