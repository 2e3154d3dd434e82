package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"gorm.io/gorm"
)

func GetAdminDashboard(c *fiber.Ctx) error {
	var totalUsers, totalStudents, totalTutors int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.User{}).Where("role = ?", "student").Count(&totalStudents)
	database.DB.Model(&models.User{}).Where("role = ?", "tutor").Count(&totalTutors)

	var totalCourses, publishedCourses int64
	database.DB.Model(&models.Course{}).Count(&totalCourses)
	database.DB.Model(&models.Course{}).Where("is_published = ?", true).Count(&publishedCourses)

	var totalEnrollments int64
	database.DB.Model(&models.Enrollment{}).Count(&totalEnrollments)

	var totalRevenue float64
	database.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue)

	var pendingPayments int64
	database.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Count(&pendingPayments)

	return c.JSON(fiber.Map{
		"total_users":       totalUsers,
		"total_students":    totalStudents,
		"total_tutors":      totalTutors,
		"total_courses":     totalCourses,
		"published_courses": publishedCourses,
		"total_enrollments": totalEnrollments,
		"total_revenue":     totalRevenue,
		"pending_payments":  pendingPayments,
	})
}

func GetAllUsers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve users"})
	}
	return c.JSON(users)
}

func GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(user)
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student tutor admin"`
}

func UpdateUserRole(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var req UpdateUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if user.ID.String() == middleware.CallerID(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot change your own role"})
	}

	user.Role = req.Role
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	return c.JSON(user)
}

// ToggleUserStatus flips IsActive. Deactivated users can no longer log in.
func ToggleUserStatus(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if user.ID.String() == middleware.CallerID(c) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot deactivate your own account"})
	}

	user.IsActive = !user.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{
		"message":   "User status updated",
		"is_active": user.IsActive,
	})
}
