package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/notifications"
	"github.com/obinna925/course_management/payments"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrInvalidPrice    = errors.New("course price is not a chargeable amount")
	ErrBadSignature    = errors.New("invalid webhook signature")
	ErrGateway         = errors.New("payment gateway error")
)

// PaymentGateway is the slice of the Paystack client the engine depends on.
type PaymentGateway interface {
	InitializeTransaction(req payments.InitializeRequest) (*payments.InitializeResponse, error)
	VerifyTransaction(reference string) (*payments.VerifyResponse, error)
	VerifySignature(signature string, body []byte) bool
}

type PaymentService struct {
	DB      *gorm.DB
	Gateway PaymentGateway
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway) *PaymentService {
	return &PaymentService{DB: db, Gateway: gateway}
}

// KoboAmount converts a course price in naira to the integer kobo amount the
// gateway charges. Non-finite, negative and zero prices are rejected: free
// courses go through direct enrollment, never through the gateway.
func KoboAmount(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, ErrInvalidPrice
	}
	kobo := int64(math.Round(price * 100))
	if kobo <= 0 {
		return 0, ErrInvalidPrice
	}
	return kobo, nil
}

type InitiateResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// InitiatePayment starts a gateway transaction for a course and records the
// pending attempt. The Payment row is written only after Paystack confirms
// initialization, so there is never a local pending row without a matching
// gateway transaction.
func (s *PaymentService) InitiatePayment(user models.User, courseID uuid.UUID, callbackURL string) (*InitiateResult, error) {
	var course models.Course
	if err := s.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrolled, err := s.isEnrolled(s.DB, user.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	kobo, err := KoboAmount(course.Price)
	if err != nil {
		return nil, err
	}

	initReq := payments.InitializeRequest{
		Email:       user.Email,
		Amount:      kobo,
		CallbackURL: callbackURL,
		Metadata: map[string]interface{}{
			"course_id": course.ID.String(),
			"user_id":   user.ID.String(),
		},
	}
	if course.PaystackSubaccountID != nil && *course.PaystackSubaccountID != "" {
		initReq.Subaccount = *course.PaystackSubaccountID
		initReq.Bearer = "subaccount"
	}

	initResp, err := s.Gateway.InitializeTransaction(initReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := models.Payment{
		UserID:        user.ID,
		CourseID:      course.ID,
		Amount:        course.Price,
		Currency:      course.Currency,
		PaymentMethod: "paystack",
		Reference:     initResp.Data.Reference,
		Status:        models.PaymentStatusPending,
	}
	if initReq.Subaccount != "" {
		meta, _ := json.Marshal(map[string]string{"subaccount": initReq.Subaccount, "bearer": initReq.Bearer})
		metaStr := string(meta)
		payment.SplitMeta = &metaStr
	}

	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, err
	}

	return &InitiateResult{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string                 `json:"reference"`
		Status    string                 `json:"status"`
		Amount    int64                  `json:"amount"`
		Metadata  map[string]interface{} `json:"metadata"`
	} `json:"data"`
}

// HandleWebhook processes one raw webhook delivery. It returns ErrBadSignature
// when the signature check fails; any other nil return means the delivery was
// acknowledged, whether or not it changed anything. Repeated deliveries of the
// same success event are no-ops once the payment is completed.
func (s *PaymentService) HandleWebhook(rawBody []byte, signature string) error {
	if !s.Gateway.VerifySignature(signature, rawBody) {
		return ErrBadSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Printf("🔥 Webhook body failed to parse after valid signature: %v", err)
		return nil
	}

	if event.Event != "charge.success" {
		return nil
	}

	reference := event.Data.Reference
	if reference == "" {
		log.Println("Webhook charge.success event carried no reference, ignoring")
		return nil
	}

	var payment models.Payment
	err := s.DB.Preload("User").Preload("Course").First(&payment, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Webhook for unknown reference %s, acknowledging for manual follow-up", reference)
			return nil
		}
		return err
	}

	if payment.Status != models.PaymentStatusPending {
		return nil
	}

	// Never trust the webhook body's own status field: confirm against the
	// gateway's record before moving any money-adjacent state.
	verifyResp, err := s.Gateway.VerifyTransaction(reference)
	if err != nil {
		log.Printf("🔥 Verify call failed for reference %s, leaving payment pending: %v", reference, err)
		return nil
	}
	if !verifyResp.Status || verifyResp.Data.Status != "success" {
		log.Printf("Webhook for reference %s did not verify as success (gateway says %q), leaving pending", reference, verifyResp.Data.Status)
		return nil
	}

	enrolledNow := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		txnID := fmt.Sprintf("%d", verifyResp.Data.ID)
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":          models.PaymentStatusCompleted,
				"provider_txn_id": txnID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another delivery won the race and will create the enrollment.
			return nil
		}

		created, err := enrollIfAbsent(tx, payment.UserID, payment.CourseID)
		if err != nil {
			return err
		}
		enrolledNow = created
		return nil
	})
	if err != nil {
		log.Printf("🔥 CRITICAL: Error completing payment for reference %s: %v", reference, err)
		return err
	}

	if enrolledNow {
		go notifications.SendEmail(payment.User.FullName, payment.User.Email,
			"Enrollment Confirmed!",
			fmt.Sprintf("<h1>You're in!</h1><p>Your payment was received and you are now enrolled in <b>%s</b>. Happy learning!</p>", payment.Course.Title))
	}

	return nil
}

// EnrollDirect is the free/administrative enrollment path. It shares
// enrollIfAbsent with the webhook path so both honour the same invariant.
func (s *PaymentService) EnrollDirect(userID, courseID uuid.UUID) (*models.Enrollment, bool, error) {
	var course models.Course
	if err := s.DB.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrCourseNotFound
		}
		return nil, false, err
	}

	created := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = enrollIfAbsent(tx, userID, courseID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	var enrollment models.Enrollment
	if err := s.DB.First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return nil, false, err
	}
	return &enrollment, created, nil
}

func (s *PaymentService) isEnrolled(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// enrollIfAbsent inserts an enrollment unless one already exists. A duplicate
// key error from a concurrent writer is treated as "someone else finished it",
// not as a failure.
func enrollIfAbsent(tx *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var existing models.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SweepPendingPayments re-verifies payments that have sat pending for longer
// than maxAge against the gateway. It completes the ones the gateway settled
// (a crash or dropped webhook between initiation and confirmation) and marks
// explicit gateway failures as failed.
func (s *PaymentService) SweepPendingPayments(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	var stale []models.Payment
	err := s.DB.Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Limit(100).
		Find(&stale).Error
	if err != nil {
		log.Printf("🔥 Failed to query stale pending payments: %v", err)
		return
	}

	for _, payment := range stale {
		verifyResp, err := s.Gateway.VerifyTransaction(payment.Reference)
		if err != nil {
			log.Printf("Reconciliation verify failed for %s: %v", payment.Reference, err)
			continue
		}

		switch verifyResp.Data.Status {
		case "success":
			pmt := payment
			err := s.DB.Transaction(func(tx *gorm.DB) error {
				res := tx.Model(&models.Payment{}).
					Where("id = ? AND status = ?", pmt.ID, models.PaymentStatusPending).
					Update("status", models.PaymentStatusCompleted)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return nil
				}
				_, err := enrollIfAbsent(tx, pmt.UserID, pmt.CourseID)
				return err
			})
			if err != nil {
				log.Printf("🔥 Reconciliation failed to complete payment %s: %v", pmt.Reference, err)
			} else {
				log.Printf("✅ Reconciled stale payment %s to completed", pmt.Reference)
			}
		case "failed", "abandoned":
			if err := s.DB.Model(&models.Payment{}).
				Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
				Update("status", models.PaymentStatusFailed).Error; err != nil {
				log.Printf("🔥 Reconciliation failed to mark payment %s failed: %v", payment.Reference, err)
			}
		}
	}
}
