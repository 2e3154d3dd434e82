package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/services"
	"gorm.io/gorm"
)

func GetStudentDashboard(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)

	var enrollmentCount int64
	database.DB.Model(&models.Enrollment{}).Where("user_id = ?", userID).Count(&enrollmentCount)

	var completedCourses int64
	database.DB.Model(&models.CourseProgress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&completedCourses)

	var completedTasks int64
	database.DB.Model(&models.StudentTask{}).
		Where("student_id = ? AND is_completed = ?", userID, true).
		Count(&completedTasks)

	var certificates int64
	database.DB.Model(&models.Certificate{}).Where("student_id = ?", userID).Count(&certificates)

	var streak models.LearningStreak
	currentStreak := 0
	totalMinutes := 0
	if err := database.DB.Where("student_id = ?", userID).First(&streak).Error; err == nil {
		currentStreak = streak.CurrentStreak
		totalMinutes = streak.TotalLearningMinutes
	}

	var recentProgress []models.CourseProgress
	database.DB.Preload("Course").
		Where("user_id = ?", userID).
		Order("last_watched_at desc").
		Limit(5).
		Find(&recentProgress)

	type progressSummary struct {
		CourseID    string  `json:"course_id"`
		CourseTitle string  `json:"course_title"`
		Percentage  float64 `json:"percentage"`
		IsCompleted bool    `json:"is_completed"`
	}
	recent := make([]progressSummary, 0, len(recentProgress))
	for _, p := range recentProgress {
		recent = append(recent, progressSummary{
			CourseID:    p.CourseID.String(),
			CourseTitle: p.Course.Title,
			Percentage:  p.ProgressPercentage,
			IsCompleted: p.IsCompleted,
		})
	}

	return c.JSON(fiber.Map{
		"enrollment_count":       enrollmentCount,
		"completed_courses":      completedCourses,
		"completed_tasks":        completedTasks,
		"certificates":           certificates,
		"current_streak":         currentStreak,
		"total_learning_minutes": totalMinutes,
		"recent_progress":        recent,
	})
}

// GetAvailableCourses lists published courses the student is not yet
// enrolled in.
func GetAvailableCourses(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)

	var courses []models.Course
	err := database.DB.Preload("Tutor").
		Where("is_published = ?", true).
		Where("id NOT IN (?)",
			database.DB.Model(&models.Enrollment{}).Select("course_id").Where("user_id = ?", userID)).
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

// GetStudentCourseDetails returns an enrolled course with its content and the
// student's progress.
func GetStudentCourseDetails(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)
	courseID := c.Params("courseId")

	var enrolled int64
	database.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&enrolled)
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not enrolled in this course"})
	}

	var course models.Course
	err := database.DB.Preload("Tutor").Preload("Contents", func(db *gorm.DB) *gorm.DB {
		return db.Order("course_contents.position asc")
	}).First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var progress models.CourseProgress
	hasProgress := database.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error == nil

	resp := fiber.Map{
		"course":   toCourseResponse(course),
		"contents": course.Contents,
	}
	if hasProgress {
		resp["progress"] = progress
	}
	return c.JSON(resp)
}

type UpdateProgressRequest struct {
	CourseID            string `json:"course_id" validate:"required,uuid4"`
	WatchedMinutes      int    `json:"watched_minutes" validate:"gte=0"`
	LastWatchedPosition int    `json:"last_watched_position" validate:"gte=0"`
}

// UpdateProgress upserts the student's progress for a course, recomputes the
// percentage from total content duration and, at 100%, kicks off certificate
// generation.
func UpdateProgress(c *fiber.Ctx) error {
	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var enrolled int64
	database.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&enrolled)
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not enrolled in this course"})
	}

	var totalSeconds float64
	database.DB.Model(&models.CourseContent{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&totalSeconds)
	totalMinutes := int(totalSeconds / 60)

	now := time.Now()
	addedMinutes := req.WatchedMinutes

	var progress models.CourseProgress
	err = database.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.CourseProgress{
			UserID:    userID,
			CourseID:  courseID,
			StartedAt: now,
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	progress.WatchedMinutes += req.WatchedMinutes
	progress.TotalMinutes = totalMinutes
	progress.LastWatchedPosition = req.LastWatchedPosition
	progress.LastWatchedAt = now

	if totalMinutes > 0 {
		pct := float64(progress.WatchedMinutes) / float64(totalMinutes) * 100
		if pct > 100 {
			pct = 100
		}
		progress.ProgressPercentage = pct
	}
	if progress.ProgressPercentage >= 100 && !progress.IsCompleted {
		progress.IsCompleted = true
		progress.CompletedAt = &now
	}

	if err := database.DB.Save(&progress).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update progress"})
	}

	go services.RecordLearningActivity(userID, addedMinutes)
	if progress.IsCompleted {
		go services.CheckAndGenerateCertificate(progress)
	}

	return c.JSON(progress)
}

func GetStudentCertificates(c *fiber.Ctx) error {
	var certificates []models.Certificate
	err := database.DB.Preload("Course").
		Where("student_id = ? AND is_active = ?", middleware.CallerID(c), true).
		Find(&certificates).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve certificates"})
	}
	return c.JSON(certificates)
}
