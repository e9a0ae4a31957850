package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookworm_backend/internals/features/lending/fines/dto"
	"bookworm_backend/internals/features/lending/fines/model"
	"bookworm_backend/internals/features/lending/fines/service"
	memberModel "bookworm_backend/internals/features/membership/members/model"
	helper "bookworm_backend/internals/helpers"
)

type FineController struct {
	DB         *gorm.DB
	Settlement *service.SettlementService
}

func NewFineController(db *gorm.DB, settlement *service.SettlementService) *FineController {
	return &FineController{DB: db, Settlement: settlement}
}

// ListFees shows unpaid fines. A librarian may query any member via
// member_id; everyone else sees the member record matching their own
// contact-address identity.
func (ctrl *FineController) ListFees(c *fiber.Ctx) error {
	actor := helper.ActorFromCtx(c)
	db := ctrl.DB.WithContext(c.Context())

	var member memberModel.MemberModel
	if actor.IsLibrarian() {
		memberID, err := uuid.Parse(c.Query("member_id"))
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "member_id query parameter is required")
		}
		if err := db.First(&member, "member_id = ?", memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.Error(c, fiber.StatusNotFound, "Member not found")
			}
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch member")
		}
	} else {
		if err := db.First(&member, "LOWER(member_email) = LOWER(?)", actor.Email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.Error(c, fiber.StatusNotFound, "No library membership found for your email address")
			}
			return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch member")
		}
	}

	var fines []dto.FineWithBookResponse
	if err := db.Table("fines").
		Select("fines.fine_id, fines.fine_amount, fines.fine_status, books.book_title, loans.loan_due_date, fines.created_at").
		Joins("JOIN loans ON loans.loan_id = fines.fine_loan_id").
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Where("fines.fine_member_id = ? AND fines.fine_status = ?", member.MemberID, model.FineStatusUnpaid).
		Order("fines.created_at desc").
		Scan(&fines).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch fines")
	}

	return helper.Success(c, "OK", fiber.Map{"member": member, "fines": fines})
}

// Pay initiates settlement of a fine at the payment gateway and returns
// the hosted-page redirect target.
func (ctrl *FineController) Pay(c *fiber.Ctx) error {
	fineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid fine id")
	}
	actor := helper.ActorFromCtx(c)

	payment, err := ctrl.Settlement.InitiatePayment(c.Context(), actor, fineID)
	switch {
	case errors.Is(err, service.ErrFineNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Fine record not found")
	case errors.Is(err, service.ErrFineAlreadyPaid):
		return helper.Error(c, fiber.StatusConflict, "Fine is already paid")
	case errors.Is(err, service.ErrNotFineOwner):
		return helper.Error(c, fiber.StatusForbidden, "You are not authorized to pay this fine")
	case errors.Is(err, service.ErrGateway):
		return helper.Error(c, fiber.StatusBadGateway, "Failed to create payment session")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to initiate payment")
	}

	return helper.Success(c, "Payment session created. Continue at the gateway.", dto.InitiatePaymentResponse{
		OrderID:     payment.PaymentOrderID,
		SnapToken:   payment.PaymentToken,
		RedirectURL: payment.PaymentRedirectURL,
	})
}

// HandleNotification is the gateway's confirm webhook. It is a public
// route; trust comes from the signature check inside the settlement
// service, never from the caller.
func (ctrl *FineController) HandleNotification(c *fiber.Ctx) error {
	var body dto.PaymentNotificationRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid notification payload")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	payment, err := ctrl.Settlement.ConfirmPayment(c.Context(), &body)
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		log.Printf("[WARN] payment notification with bad signature, order=%s", body.OrderID)
		return helper.Error(c, fiber.StatusForbidden, "Invalid signature")
	case errors.Is(err, service.ErrPaymentNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Unknown order id")
	case errors.Is(err, service.ErrAmountMismatch):
		log.Printf("[WARN] payment notification amount mismatch, order=%s", body.OrderID)
		return helper.Error(c, fiber.StatusBadRequest, "Amount mismatch")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to process notification")
	}

	return helper.Success(c, "OK", fiber.Map{
		"order_id":       payment.PaymentOrderID,
		"payment_status": payment.PaymentStatus,
	})
}

// PaymentSuccess is the browser landing after the hosted payment page.
// It only acknowledges; state changes come exclusively through the
// verified notification webhook.
func (ctrl *FineController) PaymentSuccess(c *fiber.Ctx) error {
	orderID := c.Query("order_id")

	var payment model.PaymentModel
	if orderID != "" {
		if err := ctrl.DB.WithContext(c.Context()).
			First(&payment, "payment_order_id = ?", orderID).Error; err == nil {
			return helper.Success(c, "Thank you! Your payment is being processed.", fiber.Map{
				"order_id":       payment.PaymentOrderID,
				"payment_status": payment.PaymentStatus,
			})
		}
	}
	return helper.Success(c, "Thank you! Your payment is being processed.", nil)
}
