package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStreakDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE learning_streaks (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL UNIQUE,
		current_streak INTEGER DEFAULT 0,
		longest_streak INTEGER DEFAULT 0,
		last_activity_date DATETIME,
		streak_start_date DATETIME,
		total_active_days INTEGER DEFAULT 0,
		total_learning_minutes INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	database.DB = db
	return db
}

func loadStreak(t *testing.T, db *gorm.DB, studentID uuid.UUID) models.LearningStreak {
	t.Helper()
	var streak models.LearningStreak
	require.NoError(t, db.Where("student_id = ?", studentID).First(&streak).Error)
	return streak
}

func setLastActivity(t *testing.T, db *gorm.DB, studentID uuid.UUID, when time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.LearningStreak{}).
		Where("student_id = ?", studentID).
		Update("last_activity_date", when).Error)
}

func TestRecordLearningActivity(t *testing.T) {
	t.Run("first activity starts a streak", func(t *testing.T) {
		db := setupStreakDB(t)
		studentID := uuid.New()

		RecordLearningActivity(studentID, 30)

		streak := loadStreak(t, db, studentID)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 1, streak.LongestStreak)
		assert.Equal(t, 1, streak.TotalActiveDays)
		assert.Equal(t, 30, streak.TotalLearningMinutes)
	})

	t.Run("same-day activity only adds minutes", func(t *testing.T) {
		db := setupStreakDB(t)
		studentID := uuid.New()

		RecordLearningActivity(studentID, 30)
		RecordLearningActivity(studentID, 15)

		streak := loadStreak(t, db, studentID)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 1, streak.TotalActiveDays)
		assert.Equal(t, 45, streak.TotalLearningMinutes)
	})

	t.Run("next-day activity extends the streak", func(t *testing.T) {
		db := setupStreakDB(t)
		studentID := uuid.New()

		RecordLearningActivity(studentID, 30)
		yesterday := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
		setLastActivity(t, db, studentID, yesterday)

		RecordLearningActivity(studentID, 20)

		streak := loadStreak(t, db, studentID)
		assert.Equal(t, 2, streak.CurrentStreak)
		assert.Equal(t, 2, streak.LongestStreak)
		assert.Equal(t, 2, streak.TotalActiveDays)
	})

	t.Run("a gap resets the streak but keeps totals", func(t *testing.T) {
		db := setupStreakDB(t)
		studentID := uuid.New()

		RecordLearningActivity(studentID, 30)
		yesterday := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
		setLastActivity(t, db, studentID, yesterday)
		RecordLearningActivity(studentID, 20)

		threeDaysAgo := time.Now().UTC().Truncate(24 * time.Hour).Add(-72 * time.Hour)
		setLastActivity(t, db, studentID, threeDaysAgo)
		RecordLearningActivity(studentID, 10)

		streak := loadStreak(t, db, studentID)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 2, streak.LongestStreak)
		assert.Equal(t, 3, streak.TotalActiveDays)
		assert.Equal(t, 60, streak.TotalLearningMinutes)
	})
}
