package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/models"
	"gorm.io/gorm"
)

// RecordLearningActivity updates a student's streak after a progress update.
// Same-day activity only adds minutes; a next-day activity extends the streak;
// a gap resets it.
func RecordLearningActivity(studentID uuid.UUID, minutes int) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var streak models.LearningStreak
	err := database.DB.Where("student_id = ?", studentID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.LearningStreak{
			StudentID:            studentID,
			CurrentStreak:        1,
			LongestStreak:        1,
			LastActivityDate:     &today,
			StreakStartDate:      &today,
			TotalActiveDays:      1,
			TotalLearningMinutes: minutes,
		}
		if err := database.DB.Create(&streak).Error; err != nil {
			log.Printf("🔥 Failed to create learning streak for %s: %v", studentID, err)
		}
		return
	}
	if err != nil {
		log.Printf("🔥 Failed to load learning streak for %s: %v", studentID, err)
		return
	}

	streak.TotalLearningMinutes += minutes

	if streak.LastActivityDate == nil || today.After(*streak.LastActivityDate) {
		switch {
		case streak.LastActivityDate != nil && today.Sub(*streak.LastActivityDate) == 24*time.Hour:
			streak.CurrentStreak++
		default:
			streak.CurrentStreak = 1
			streak.StreakStartDate = &today
		}
		streak.TotalActiveDays++
		streak.LastActivityDate = &today
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}

	if err := database.DB.Save(&streak).Error; err != nil {
		log.Printf("🔥 Failed to update learning streak for %s: %v", studentID, err)
	}
}
