package jobs

import (
	"log"
	"time"

	"github.com/obinna925/course_management/services"
)

var paymentService *services.PaymentService

// InitPaymentJobs wires the reconciliation sweep to the shared payment
// service. Called once from main before the cron scheduler starts.
func InitPaymentJobs(svc *services.PaymentService) {
	paymentService = svc
}

// ReconcileStalePayments re-checks payments that have been pending for over an
// hour against the gateway. Covers dropped webhooks and crashes between
// initiation and confirmation.
func ReconcileStalePayments() {
	if paymentService == nil {
		return
	}

	log.Println("Running job: ReconcileStalePayments...")
	paymentService.SweepPendingPayments(time.Hour)
}
