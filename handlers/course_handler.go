package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"gorm.io/gorm"
)

type CourseResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        *string  `json:"category"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	ThumbnailURL    *string  `json:"thumbnail_url"`
	TutorID         string   `json:"tutor_id"`
	TutorName       string   `json:"tutor_name"`
	EnrollmentCount int64    `json:"enrollment_count"`
	AverageRating   *float64 `json:"average_rating"`
	IsPublished     bool     `json:"is_published"`
}

func toCourseResponse(course models.Course) CourseResponse {
	var enrollmentCount int64
	database.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollmentCount)

	var avgRating *float64
	row := database.DB.Model(&models.Review{}).Where("course_id = ?", course.ID).Select("AVG(rating)").Row()
	var avg *float64
	if err := row.Scan(&avg); err == nil && avg != nil {
		avgRating = avg
	}

	return CourseResponse{
		ID:              course.ID.String(),
		Title:           course.Title,
		Description:     course.Description,
		Category:        course.Category,
		Price:           course.Price,
		Currency:        course.Currency,
		ThumbnailURL:    course.ThumbnailURL,
		TutorID:         course.TutorID.String(),
		TutorName:       course.Tutor.FullName,
		EnrollmentCount: enrollmentCount,
		AverageRating:   avgRating,
		IsPublished:     course.IsPublished,
	}
}

func GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.Preload("Tutor").Where("is_published = ?", true).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve courses"})
	}

	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, toCourseResponse(course))
	}
	return c.JSON(responses)
}

func GetCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	if _, err := uuid.Parse(courseID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var course models.Course
	if err := database.DB.Preload("Tutor").First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(toCourseResponse(course))
}

type CourseCreateRequest struct {
	Title                string  `json:"title" validate:"required,min=3,max=255"`
	Description          string  `json:"description" validate:"required"`
	Category             *string `json:"category"`
	Price                float64 `json:"price" validate:"gte=0"`
	ThumbnailURL         *string `json:"thumbnail_url" validate:"omitempty,url"`
	PaystackSubaccountID *string `json:"paystack_subaccount_id"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutorID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	course := models.Course{
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Price:                req.Price,
		Currency:             "NGN",
		ThumbnailURL:         req.ThumbnailURL,
		PaystackSubaccountID: req.PaystackSubaccountID,
		TutorID:              tutorID,
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(course)
}

type CourseUpdateRequest struct {
	Title                *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description          *string  `json:"description"`
	Category             *string  `json:"category"`
	Price                *float64 `json:"price" validate:"omitempty,gte=0"`
	ThumbnailURL         *string  `json:"thumbnail_url" validate:"omitempty,url"`
	PaystackSubaccountID *string  `json:"paystack_subaccount_id"`
	IsPublished          *bool    `json:"is_published"`
}

func UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	var req CourseUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = req.Category
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = req.ThumbnailURL
	}
	if req.PaystackSubaccountID != nil {
		course.PaystackSubaccountID = req.PaystackSubaccountID
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}

	if err := database.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	return c.JSON(course)
}

func DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.CourseContent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete course"})
	}

	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}

type CourseContentRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	ContentType string  `json:"content_type" validate:"required,oneof=video document"`
	PublicID    string  `json:"public_id"`
	SecureURL   string  `json:"secure_url" validate:"required,url"`
	Duration    float64 `json:"duration" validate:"gte=0"`
	Position    int     `json:"position" validate:"gte=0"`
}

func AddCourseContent(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	var req CourseContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	content := models.CourseContent{
		CourseID:    course.ID,
		Title:       req.Title,
		ContentType: req.ContentType,
		PublicID:    req.PublicID,
		SecureURL:   req.SecureURL,
		Duration:    req.Duration,
		Position:    req.Position,
	}

	if err := database.DB.Create(&content).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add course content"})
	}

	return c.Status(fiber.StatusCreated).JSON(content)
}

func GetCourseContent(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	role := middleware.CallerRole(c)
	callerID := middleware.CallerID(c)
	isOwnerTutor := role == "tutor" && course.TutorID.String() == callerID

	if role == "student" {
		var count int64
		database.DB.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", callerID, courseID).
			Count(&count)
		if count == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Enroll in this course to access its content"})
		}
	} else if role == "tutor" && !isOwnerTutor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	var contents []models.CourseContent
	if err := database.DB.Where("course_id = ?", courseID).Order("position asc").Find(&contents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve course content"})
	}

	return c.JSON(contents)
}
