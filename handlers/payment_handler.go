package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/middleware"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/services"
	"gorm.io/gorm"
)

var paymentService *services.PaymentService

// InitPaymentHandlers injects the shared payment service. Called once from
// main after the database and gateway client are ready.
func InitPaymentHandlers(svc *services.PaymentService) {
	paymentService = svc
}

type InitiatePaymentRequest struct {
	CourseID    string `json:"course_id" validate:"required,uuid4"`
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

func InitiatePayment(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
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

	var user models.User
	if err := database.DB.First(&user, "id = ?", middleware.CallerID(c)).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	result, err := paymentService.InitiatePayment(user, courseID, req.CallbackURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You are already enrolled in this course"})
		case errors.Is(err, services.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Course is not payable; free courses use direct enrollment"})
		case errors.Is(err, services.ErrGateway):
			log.Printf("🔥 Payment initiation failed upstream: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway is unavailable, please try again"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initiate payment"})
		}
	}

	return c.JSON(result)
}

// HandlePaymentWebhook receives Paystack event deliveries. The endpoint is
// unauthenticated; trust comes entirely from the signature over the raw body.
// It answers 200 for every application-level no-op so the gateway does not
// retry events we deliberately ignore.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("x-paystack-signature")

	err := paymentService.HandleWebhook(rawBody, signature)
	if err != nil {
		if errors.Is(err, services.ErrBadSignature) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
		}
		log.Printf("🔥 CRITICAL: Error processing webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed"})
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name,omitempty"`
	CourseID      string  `json:"course_id"`
	CourseTitle   string  `json:"course_title,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference"`
	Status        string  `json:"status"`
	ReceiptURL    *string `json:"receipt_url"`
	CreatedAt     string  `json:"created_at"`
}

func toPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		UserName:      p.User.FullName,
		CourseID:      p.CourseID.String(),
		CourseTitle:   p.Course.Title,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		Reference:     p.Reference,
		Status:        p.Status,
		ReceiptURL:    p.ReceiptURL,
		CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func GetAllPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	if err := database.DB.Preload("User").Preload("Course").Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, toPaymentResponse(p))
	}
	return c.JSON(responses)
}

func GetPayment(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")
	if _, err := uuid.Parse(paymentID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var payment models.Payment
	if err := database.DB.Preload("User").Preload("Course").First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if middleware.CallerRole(c) != "admin" && payment.UserID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	return c.JSON(toPaymentResponse(payment))
}

func GetUserPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	err := database.DB.Preload("Course").
		Where("user_id = ?", middleware.CallerID(c)).
		Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, toPaymentResponse(p))
	}
	return c.JSON(responses)
}

func GetCoursePayments(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if middleware.CallerRole(c) == "tutor" && course.TutorID.String() != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You don't own this course"})
	}

	var payments []models.Payment
	err := database.DB.Preload("User").Where("course_id = ?", courseID).Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		p.Course = course
		responses = append(responses, toPaymentResponse(p))
	}
	return c.JSON(responses)
}

type PaymentUpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=failed refunded"`
	ReceiptURL *string `json:"receipt_url" validate:"omitempty,url"`
	Notes      *string `json:"notes"`
}

// AdminUpdatePayment is the administrative escape hatch for failed/refunded
// transitions. Completed only ever comes from a verified gateway event, so it
// cannot be set here, and a completed payment can only move to refunded.
func AdminUpdatePayment(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")

	var req PaymentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	if req.Status != nil {
		if payment.Status == models.PaymentStatusCompleted && *req.Status != models.PaymentStatusRefunded {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Completed payments can only be refunded"})
		}
		payment.Status = *req.Status
	}
	if req.ReceiptURL != nil {
		payment.ReceiptURL = req.ReceiptURL
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := database.DB.Save(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment"})
	}

	return c.JSON(fiber.Map{"message": "Payment updated successfully"})
}

// AdminDeletePayment removes a payment and, like the enrollment it funded and
// any reviews the student left, in one transaction.
func AdminDeletePayment(c *fiber.Ctx) error {
	paymentID := c.Params("paymentId")

	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND course_id = ?", payment.UserID, payment.CourseID).
			Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND course_id = ?", payment.UserID, payment.CourseID).
			Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&payment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete payment"})
	}

	return c.JSON(fiber.Map{"message": "Payment and related data deleted successfully"})
}
