package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/obinna925/course_management/configs"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/models"
	"github.com/obinna925/course_management/notifications"
	"github.com/obinna925/course_management/utils"
)

// CheckAndGenerateCertificate issues a completion certificate once a student's
// course progress reaches 100%. Safe to call repeatedly; the existing-cert
// check makes re-issuing a no-op.
func CheckAndGenerateCertificate(progress models.CourseProgress) {
	if !progress.IsCompleted {
		return
	}

	var existingCert models.Certificate
	if err := database.DB.Where("student_id = ? AND course_id = ?", progress.UserID, progress.CourseID).First(&existingCert).Error; err == nil {
		return
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", progress.UserID).Error; err != nil {
		log.Printf("🔥 Certificate: failed to load student %s: %v", progress.UserID, err)
		return
	}

	var course models.Course
	if err := database.DB.Preload("Tutor").First(&course, "id = ?", progress.CourseID).Error; err != nil {
		log.Printf("🔥 Certificate: failed to load course %s: %v", progress.CourseID, err)
		return
	}

	htmlData, err := generateCertificateHTML(student.FullName, course.Tutor.FullName, course.Title)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, student.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload certificate to Cloudinary: %v", err)
		return
	}

	certNumber, err := utils.GenerateCertificateNumber(database.DB)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate number: %v", err)
		return
	}

	newCertificate := models.Certificate{
		StudentID:         student.ID,
		CourseID:          course.ID,
		CertificateName:   fmt.Sprintf("Certificate of Completion - %s", course.Title),
		CertificateNumber: certNumber,
		CertificateURL:    &uploadURL,
		IssuedDate:        time.Now(),
	}

	if err := database.DB.Create(&newCertificate).Error; err != nil {
		log.Printf("🔥 Failed to create certificate record for student %s: %v", student.ID, err)
		return
	}

	log.Printf("✅ Generated and uploaded certificate %s for student %s.", certNumber, student.ID)
	go notifications.SendEmail(student.FullName, student.Email,
		"Your Certificate is Ready!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>You completed <b>%s</b>. Your certificate is available <a href='%s'>here</a>.</p>", course.Title, uploadURL))
}

func generateCertificateHTML(studentName, tutorName, courseTitle string) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName    string
		TutorName      string
		CourseTitle    string
		CompletionDate string
	}{
		StudentName:    studentName,
		TutorName:      tutorName,
		CourseTitle:    courseTitle,
		CompletionDate: time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", studentID, uuid.New().String()),
		Folder:       "course_management_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
