package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/notifications"
	"github.com/obinna925/course_management/services"
	"gorm.io/gorm"
)

type EnrollmentResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title,omitempty"`
	EnrolledAt  string `json:"enrolled_at"`
}

func GetUserEnrollments(c *fiber.Ctx) error {
	var enrollments []models.Enrollment
	err := database.DB.Preload("Course").Preload("Course.Tutor").
		Where("user_id = ?", middleware.CallerID(c)).
		Find(&enrollments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve enrollments"})
	}

	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		responses = append(responses, EnrollmentResponse{
			ID:          e.ID.String(),
			UserID:      e.UserID.String(),
			CourseID:    e.CourseID.String(),
			CourseTitle: e.Course.Title,
			UserName:    e.Course.Tutor.FullName,
			EnrolledAt:  e.EnrolledAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(responses)
}

func GetCourseEnrollments(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't have permission to view enrollments for this course"})
	}

	var enrollments []models.Enrollment
	if err := database.DB.Preload("User").Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve enrollments"})
	}

	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		responses = append(responses, EnrollmentResponse{
			ID:          e.ID.String(),
			UserID:      e.UserID.String(),
			UserName:    e.User.FullName,
			CourseID:    e.CourseID.String(),
			CourseTitle: course.Title,
			EnrolledAt:  e.EnrolledAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(responses)
}

type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid4"`
}

// EnrollInCourse is the direct (non-gateway) enrollment path: free courses
// for students, any course for admins. It shares the invariant check with the
// webhook path, so a duplicate attempt is a benign success rather than an
// error.
func EnrollInCourse(c *fiber.Ctx) error {
	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}
	userID, err := uuid.Parse(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if course.Price > 0 && middleware.CallerRole(c) != "admin" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This course requires payment; use the payment flow"})
	}

	enrollment, created, err := paymentService.EnrollDirect(userID, courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll in course"})
	}

	response := EnrollmentResponse{
		ID:          enrollment.ID.String(),
		UserID:      enrollment.UserID.String(),
		CourseID:    enrollment.CourseID.String(),
		CourseTitle: course.Title,
		EnrolledAt:  enrollment.EnrolledAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message":    "Already enrolled in this course",
			"enrollment": response,
		})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		go notifications.SendEmail(user.FullName, user.Email, "Enrollment Confirmed!",
			"<h1>You're in!</h1><p>You are now enrolled in <b>"+course.Title+"</b>. Happy learning!</p>")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Successfully enrolled in course",
		"enrollment": response,
	})
}

func DeleteEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Params("enrollmentId")

	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if enrollment.UserID.String() != middleware.CallerID(c) && middleware.CallerRole(c) != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't have permission to delete this enrollment"})
	}

	if err := database.DB.Delete(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete enrollment"})
	}

	return c.JSON(fiber.Map{"message": "Successfully unenrolled from course"})
}
