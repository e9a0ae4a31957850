package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	fineController "bookworm_backend/internals/features/lending/fines/controller"
	fineService "bookworm_backend/internals/features/lending/fines/service"
	loanController "bookworm_backend/internals/features/lending/loans/controller"
	loanService "bookworm_backend/internals/features/lending/loans/service"
	"bookworm_backend/internals/middlewares"
)

// LendingLibrarianRoutes mounts the checkout/return desk.
func LendingLibrarianRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := loanController.NewLoanController(loanService.NewLendingService(db))

	r.Post("/loans/checkout", ctrl.Checkout)
	r.Post("/loans/return", ctrl.Return)
}

// LendingUserRoutes mounts fee viewing and payment initiation.
func LendingUserRoutes(r fiber.Router, db *gorm.DB, settlement *fineService.SettlementService) {
	ctrl := fineController.NewFineController(db, settlement)

	r.Get("/fees", ctrl.ListFees)
	r.Post("/fines/:id/pay", middlewares.PaymentRateLimiter(), ctrl.Pay)
	r.Get("/payments/success", ctrl.PaymentSuccess)
}

// LendingPublicRoutes mounts the gateway notification webhook. It must be
// reachable without a session; the settlement service verifies the
// signature instead.
func LendingPublicRoutes(r fiber.Router, db *gorm.DB, settlement *fineService.SettlementService) {
	ctrl := fineController.NewFineController(db, settlement)

	r.Post("/payments/notification", ctrl.HandleNotification)
}
