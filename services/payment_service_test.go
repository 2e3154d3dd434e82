package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The production schema relies on gen_random_uuid(), which sqlite does not
// have, so the test schema is created by hand. Column names and constraints
// mirror what AutoMigrate produces on postgres.
var testSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		bio TEXT,
		profile_picture_url TEXT,
		reset_password_token TEXT,
		reset_password_token_expires_at DATETIME,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		price NUMERIC NOT NULL DEFAULT 0,
		currency TEXT DEFAULT 'NGN',
		thumbnail_url TEXT,
		paystack_subaccount_id TEXT,
		tutor_id TEXT NOT NULL,
		is_published BOOLEAN DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE enrollments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		enrolled_at DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_enrollments_user_course ON enrollments(user_id, course_id)`,
	`CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		course_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT DEFAULT 'NGN',
		payment_method TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		provider_txn_id TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		receipt_url TEXT,
		split_meta TEXT,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type fakeGateway struct {
	initResp    *payments.InitializeResponse
	initErr     error
	verifyResp  *payments.VerifyResponse
	verifyErr   error
	initCalls   int
	verifyCalls int
	lastInitReq payments.InitializeRequest
}

func (f *fakeGateway) InitializeTransaction(req payments.InitializeRequest) (*payments.InitializeResponse, error) {
	f.initCalls++
	f.lastInitReq = req
	if f.initErr != nil {
		return nil, f.initErr
	}
	return f.initResp, nil
}

func (f *fakeGateway) VerifyTransaction(reference string) (*payments.VerifyResponse, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResp, nil
}

func (f *fakeGateway) VerifySignature(signature string, body []byte) bool {
	return signature == "good"
}

func initResponse(reference string) *payments.InitializeResponse {
	resp := &payments.InitializeResponse{Status: true, Message: "Authorization URL created"}
	resp.Data.AuthorizationURL = "https://checkout.paystack.com/" + reference
	resp.Data.AccessCode = "access_" + reference
	resp.Data.Reference = reference
	return resp
}

func verifyResponse(status string, amount int64) *payments.VerifyResponse {
	resp := &payments.VerifyResponse{Status: true, Message: "Verification successful"}
	resp.Data.ID = 4099260516
	resp.Data.Status = status
	resp.Data.Amount = amount
	resp.Data.Currency = "NGN"
	return resp
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.User{
		ID:       uuid.New(),
		FullName: "Test Student",
		Email:    email,
		Password: string(hashed),
		Role:     "student",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, price float64) models.Course {
	t.Helper()
	course := models.Course{
		ID:          uuid.New(),
		Title:       "Intro to Distributed Systems",
		Description: "Consensus, replication, and failure",
		Price:       price,
		Currency:    "NGN",
		TutorID:     uuid.New(),
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestKoboAmount(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		want    int64
		wantErr bool
	}{
		{"round naira", 50000.00, 5000000, false},
		{"decimal price", 19.99, 1999, false},
		{"one kobo", 0.01, 1, false},
		{"float representation noise", 4999.999999999999, 500000, false},
		{"free course", 0, 0, true},
		{"rounds to zero", 0.004, 0, true},
		{"negative", -5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KoboAmount(tt.price)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitiatePayment(t *testing.T) {
	t.Run("happy path records a pending payment", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{initResp: initResponse("ref_happy")}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000.00)

		result, err := svc.InitiatePayment(user, course.ID, "https://app.example.com/callback")
		require.NoError(t, err)
		assert.Equal(t, "ref_happy", result.Reference)
		assert.Equal(t, "https://checkout.paystack.com/ref_happy", result.AuthorizationURL)

		assert.Equal(t, int64(5000000), gateway.lastInitReq.Amount)
		assert.Equal(t, "student@example.com", gateway.lastInitReq.Email)
		assert.Equal(t, course.ID.String(), gateway.lastInitReq.Metadata["course_id"])

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_happy").Error)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.Equal(t, 50000.00, payment.Amount)
		assert.Equal(t, user.ID, payment.UserID)
		assert.Nil(t, payment.SplitMeta)
	})

	t.Run("course not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPaymentService(db, &fakeGateway{})
		user := seedUser(t, db, "student@example.com")

		_, err := svc.InitiatePayment(user, uuid.New(), "")
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("already enrolled", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{initResp: initResponse("ref_dup")}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 1000)
		require.NoError(t, db.Create(&models.Enrollment{
			ID: uuid.New(), UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now(),
		}).Error)

		_, err := svc.InitiatePayment(user, course.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
		assert.Zero(t, gateway.initCalls)
	})

	t.Run("free course is not chargeable", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 0)

		_, err := svc.InitiatePayment(user, course.ID, "")
		assert.ErrorIs(t, err, ErrInvalidPrice)
		assert.Zero(t, gateway.initCalls)
	})

	t.Run("gateway failure leaves no payment row", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{initErr: errors.New("connection refused")}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 1000)

		_, err := svc.InitiatePayment(user, course.ID, "")
		assert.ErrorIs(t, err, ErrGateway)

		var count int64
		db.Model(&models.Payment{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("subaccount split is forwarded and recorded", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{initResp: initResponse("ref_split")}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 20000)
		sub := "ACCT_8f4s1eq7ml6rlzj"
		require.NoError(t, db.Model(&course).Update("paystack_subaccount_id", sub).Error)

		_, err := svc.InitiatePayment(user, course.ID, "")
		require.NoError(t, err)
		assert.Equal(t, sub, gateway.lastInitReq.Subaccount)
		assert.Equal(t, "subaccount", gateway.lastInitReq.Bearer)

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_split").Error)
		require.NotNil(t, payment.SplitMeta)
		assert.Contains(t, *payment.SplitMeta, sub)
	})
}

func webhookBody(reference string) []byte {
	return []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s","status":"success","amount":5000000}}`, reference))
}

func seedPendingPayment(t *testing.T, db *gorm.DB, user models.User, course models.Course, reference string) models.Payment {
	t.Helper()
	payment := models.Payment{
		ID:            uuid.New(),
		UserID:        user.ID,
		CourseID:      course.ID,
		Amount:        course.Price,
		Currency:      "NGN",
		PaymentMethod: "paystack",
		Reference:     reference,
		Status:        models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func TestHandleWebhook(t *testing.T) {
	t.Run("bad signature is rejected before any parsing", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPaymentService(db, &fakeGateway{})

		err := svc.HandleWebhook(webhookBody("ref_x"), "forged")
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("irrelevant event is acknowledged without side effects", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{}
		svc := NewPaymentService(db, gateway)

		body := []byte(`{"event":"transfer.success","data":{"reference":"ref_x"}}`)
		require.NoError(t, svc.HandleWebhook(body, "good"))
		assert.Zero(t, gateway.verifyCalls)
	})

	t.Run("unknown reference is acknowledged", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{}
		svc := NewPaymentService(db, gateway)

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_never_seen"), "good"))
		assert.Zero(t, gateway.verifyCalls)
	})

	t.Run("verified success completes payment and enrolls once", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_ok")

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_ok"), "good"))

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_ok").Error)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		require.NotNil(t, payment.ProviderTxnID)
		assert.Equal(t, "4099260516", *payment.ProviderTxnID)

		var enrollments int64
		db.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", user.ID, course.ID).
			Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)
	})

	t.Run("repeated deliveries stay idempotent", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_dup")

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.HandleWebhook(webhookBody("ref_dup"), "good"))
		}

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)

		// Only the first delivery reached the gateway; later ones saw a
		// non-pending payment and stopped early.
		assert.Equal(t, 1, gateway.verifyCalls)
	})

	t.Run("gateway disagreement leaves the payment pending", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("abandoned", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_liar")

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_liar"), "good"))

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_liar").Error)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Zero(t, enrollments)
	})

	t.Run("verify call failure leaves the payment pending", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyErr: errors.New("timeout")}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_down")

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_down"), "good"))

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_down").Error)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
	})

	t.Run("losing the completion race creates no second enrollment", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		payment := seedPendingPayment(t, db, user, course, "ref_race")

		// A rival delivery completes the payment and enrolls between our
		// pending read and the guarded status update, so the guarded update
		// matches zero rows.
		fired := false
		require.NoError(t, db.Callback().Update().Before("gorm:update").Register("rival_delivery", func(tx *gorm.DB) {
			if fired {
				return
			}
			if _, ok := tx.Statement.Model.(*models.Payment); !ok {
				return
			}
			fired = true
			rival := tx.Session(&gorm.Session{NewDB: true})
			rival.Exec(`UPDATE payments SET status = ?, provider_txn_id = ? WHERE id = ?`,
				models.PaymentStatusCompleted, "4099260516", payment.ID.String())
			rival.Exec(`INSERT INTO enrollments (id, user_id, course_id, enrolled_at) VALUES (?, ?, ?, ?)`,
				uuid.New().String(), user.ID.String(), course.ID.String(), time.Now().UTC())
		}))

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_race"), "good"))
		require.True(t, fired)

		var got models.Payment
		require.NoError(t, db.First(&got, "reference = ?", "ref_race").Error)
		assert.Equal(t, models.PaymentStatusCompleted, got.Status)

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)
	})

	t.Run("webhook enrolls even when an enrollment already exists", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_pre")
		require.NoError(t, db.Create(&models.Enrollment{
			ID: uuid.New(), UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now(),
		}).Error)

		require.NoError(t, svc.HandleWebhook(webhookBody("ref_pre"), "good"))

		var payment models.Payment
		require.NoError(t, db.First(&payment, "reference = ?", "ref_pre").Error)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)
	})
}

func TestEnrollIfAbsent(t *testing.T) {
	t.Run("duplicate insert is translated to ErrDuplicatedKey", func(t *testing.T) {
		db := newTestDB(t)
		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 1000)

		first := models.Enrollment{UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now().UTC()}
		require.NoError(t, db.Create(&first).Error)

		second := models.Enrollment{UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now().UTC()}
		assert.ErrorIs(t, db.Create(&second).Error, gorm.ErrDuplicatedKey)
	})

	t.Run("a racing writer's duplicate key reads as already enrolled", func(t *testing.T) {
		db := newTestDB(t)
		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 1000)

		// A rival writer sneaks its row in between the existence check and
		// our own insert, so the insert trips the unique index.
		snuck := false
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("rival_enrollment", func(tx *gorm.DB) {
			if snuck {
				return
			}
			if _, ok := tx.Statement.Dest.(*models.Enrollment); !ok {
				return
			}
			snuck = true
			tx.Session(&gorm.Session{NewDB: true}).Exec(
				`INSERT INTO enrollments (id, user_id, course_id, enrolled_at) VALUES (?, ?, ?, ?)`,
				uuid.New().String(), user.ID.String(), course.ID.String(), time.Now().UTC())
		}))

		created, err := enrollIfAbsent(db, user.ID, course.ID)
		require.NoError(t, err)
		assert.False(t, created)
		require.True(t, snuck)

		var count int64
		db.Model(&models.Enrollment{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestEnrollDirect(t *testing.T) {
	t.Run("creates then reports existing", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPaymentService(db, &fakeGateway{})

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 0)

		enrollment, created, err := svc.EnrollDirect(user.ID, course.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, course.ID, enrollment.CourseID)

		_, created, err = svc.EnrollDirect(user.ID, course.ID)
		require.NoError(t, err)
		assert.False(t, created)

		var count int64
		db.Model(&models.Enrollment{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("course not found", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPaymentService(db, &fakeGateway{})
		user := seedUser(t, db, "student@example.com")

		_, _, err := svc.EnrollDirect(user.ID, uuid.New())
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestSweepPendingPayments(t *testing.T) {
	backdate := func(db *gorm.DB, p models.Payment, age time.Duration) {
		db.Model(&models.Payment{}).Where("id = ?", p.ID).
			Update("created_at", time.Now().Add(-age))
	}

	t.Run("settled stale payment is completed and enrolled", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		payment := seedPendingPayment(t, db, user, course, "ref_stale")
		backdate(db, payment, 2*time.Hour)

		svc.SweepPendingPayments(time.Hour)

		var got models.Payment
		require.NoError(t, db.First(&got, "reference = ?", "ref_stale").Error)
		assert.Equal(t, models.PaymentStatusCompleted, got.Status)

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Equal(t, int64(1), enrollments)
	})

	t.Run("abandoned stale payment is marked failed", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("abandoned", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		payment := seedPendingPayment(t, db, user, course, "ref_gone")
		backdate(db, payment, 2*time.Hour)

		svc.SweepPendingPayments(time.Hour)

		var got models.Payment
		require.NoError(t, db.First(&got, "reference = ?", "ref_gone").Error)
		assert.Equal(t, models.PaymentStatusFailed, got.Status)

		var enrollments int64
		db.Model(&models.Enrollment{}).Count(&enrollments)
		assert.Zero(t, enrollments)
	})

	t.Run("fresh pending payments are left alone", func(t *testing.T) {
		db := newTestDB(t)
		gateway := &fakeGateway{verifyResp: verifyResponse("success", 5000000)}
		svc := NewPaymentService(db, gateway)

		user := seedUser(t, db, "student@example.com")
		course := seedCourse(t, db, 50000)
		seedPendingPayment(t, db, user, course, "ref_fresh")

		svc.SweepPendingPayments(time.Hour)

		assert.Zero(t, gateway.verifyCalls)

		var got models.Payment
		require.NoError(t, db.First(&got, "reference = ?", "ref_fresh").Error)
		assert.Equal(t, models.PaymentStatusPending, got.Status)
	})
}
