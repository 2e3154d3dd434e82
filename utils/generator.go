package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/obinna925/course_management/models"
	"gorm.io/gorm"
)

const certificateSerialLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCertificateNumber returns a serial of the form CERT-XXXXXXXX that no
// existing certificate holds.
func GenerateCertificateNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, certificateSerialLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		number := fmt.Sprintf("CERT-%s", string(b))

		var cert models.Certificate
		err := tx.Where("certificate_number = ?", number).First(&cert).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return number, nil
			}
			return "", err
		}
	}
}
