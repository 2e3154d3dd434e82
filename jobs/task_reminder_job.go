package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/notifications"
)

// SendTaskDueReminders emails students whose course tasks fall due within the
// next 24 hours and have no submission yet.
func SendTaskDueReminders() {
	log.Println("Running job: SendTaskDueReminders...")

	now := time.Now()
	upperBound := now.Add(24 * time.Hour)

	var dueTasks []models.CourseTask
	err := database.DB.
		Preload("Course").
		Where("is_active = ? AND due_date BETWEEN ? AND ?", true, now, upperBound).
		Find(&dueTasks).Error
	if err != nil {
		log.Printf("Error checking for due tasks: %v", err)
		return
	}

	if len(dueTasks) == 0 {
		return
	}

	for _, task := range dueTasks {
		var students []models.User
		err := database.DB.
			Joins("JOIN enrollments ON enrollments.user_id = users.id").
			Where("enrollments.course_id = ?", task.CourseID).
			Where("users.id NOT IN (?)",
				database.DB.Model(&models.TaskSubmission{}).
					Select("student_id").
					Where("task_id = ? AND status != ?", task.ID, models.SubmissionStatusDraft)).
			Find(&students).Error
		if err != nil {
			log.Printf("Error loading students for task %s: %v", task.ID, err)
			continue
		}

		for _, student := range students {
			emailSubject := "Reminder: Assignment Due Soon!"
			emailBody := fmt.Sprintf(
				"<h1>Assignment Due</h1><p>Hi %s,</p><p>Your assignment <b>%s</b> for <b>%s</b> is due on %s. Don't forget to submit!</p>",
				student.FullName,
				task.Title,
				task.Course.Title,
				task.DueDate.Format("Jan 2, 2006 15:04"),
			)
			go notifications.SendEmail(student.FullName, student.Email, emailSubject, emailBody)
		}
	}
}
