package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	bookModel "bookworm_backend/internals/features/catalog/books/model"
	"bookworm_backend/internals/features/lending/fines/dto"
	"bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
	helper "bookworm_backend/internals/helpers"
)

var (
	ErrFineNotFound     = errors.New("fine not found")
	ErrFineAlreadyPaid  = errors.New("fine is already paid")
	ErrNotFineOwner     = errors.New("not allowed to settle this fine")
	ErrPaymentNotFound  = errors.New("payment session not found")
	ErrInvalidSignature = errors.New("invalid notification signature")
	ErrAmountMismatch   = errors.New("notification amount does not match payment")
	ErrGateway          = errors.New("payment gateway request failed")
)

// SnapCreator is the slice of the Midtrans Snap client the settlement
// workflow needs; tests substitute a stub.
type SnapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// SettlementService runs the two-phase fine settlement: initiate opens a
// hosted payment session at the gateway, confirm is driven later by the
// gateway's signed notification webhook.
type SettlementService struct {
	DB        *gorm.DB
	Snap      SnapCreator
	ServerKey string
	BaseURL   string
}

func NewSettlementService(db *gorm.DB, serverKey string, useProd bool, baseURL string) *SettlementService {
	client := snap.Client{}
	env := midtrans.Sandbox
	if useProd {
		env = midtrans.Production
	}
	client.New(serverKey, env)
	return &SettlementService{
		DB:        db,
		Snap:      &client,
		ServerKey: serverKey,
		BaseURL:   baseURL,
	}
}

// InitiatePayment authorizes the actor, opens a Snap session for the fine
// amount and records the session. No gateway call happens on any error path.
func (s *SettlementService) InitiatePayment(ctx context.Context, actor helper.Actor, fineID uuid.UUID) (*model.PaymentModel, error) {
	db := s.DB.WithContext(ctx)

	var fine model.FineModel
	if err := db.First(&fine, "fine_id = ?", fineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFineNotFound
		}
		return nil, err
	}
	if fine.FineStatus == model.FineStatusPaid {
		return nil, ErrFineAlreadyPaid
	}

	var member memberModel.MemberModel
	if err := db.First(&member, "member_id = ?", fine.FineMemberID).Error; err != nil {
		return nil, err
	}

	// A fine may be settled by a librarian or by its owning member,
	// matched on the contact-address identity.
	if !actor.IsLibrarian() && !strings.EqualFold(actor.Email, member.MemberEmail) {
		return nil, ErrNotFineOwner
	}

	// Book title for the line item, resolved through the loan.
	var loan loanModel.LoanModel
	if err := db.First(&loan, "loan_id = ?", fine.FineLoanID).Error; err != nil {
		return nil, err
	}
	var book bookModel.BookModel
	if err := db.First(&book, "book_id = ?", loan.LoanBookID).Error; err != nil {
		return nil, err
	}

	orderID := fmt.Sprintf("FINE-%s-%d", fineID.String()[:8], time.Now().UnixNano())
	payment := model.PaymentModel{
		PaymentFineID:      fine.FineID,
		PaymentOrderID:     orderID,
		PaymentGrossAmount: fine.FineAmount,
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}

	amount := MinorUnits(fine.FineAmount)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    fine.FineID.String(),
			Name:  "Library Fine - Book: " + book.BookTitle,
			Price: amount,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: member.MemberFirstName,
			Email: member.MemberEmail,
		},
		Callbacks: &snap.Callbacks{
			Finish: s.BaseURL + "/api/u/payments/success?order_id=" + orderID,
		},
	}

	resp, mErr := s.Snap.CreateTransaction(req)
	if mErr != nil {
		db.Model(&model.PaymentModel{}).
			Where("payment_id = ?", payment.PaymentID).
			Update("payment_status", model.PaymentStatusCanceled)
		return nil, fmt.Errorf("%w: %v", ErrGateway, mErr)
	}

	payment.PaymentToken = resp.Token
	payment.PaymentRedirectURL = resp.RedirectURL
	if err := db.Model(&model.PaymentModel{}).
		Where("payment_id = ?", payment.PaymentID).
		Updates(map[string]interface{}{
			"payment_token":        payment.PaymentToken,
			"payment_redirect_url": payment.PaymentRedirectURL,
		}).Error; err != nil {
		return nil, err
	}

	return &payment, nil
}

// ConfirmPayment applies a gateway notification. The callback alone is
// never trusted: the signature must verify against the server key and the
// amount must match the session recorded at initiate time. Confirming an
// already-paid fine is a no-op.
func (s *SettlementService) ConfirmPayment(ctx context.Context, notif *dto.PaymentNotificationRequest) (*model.PaymentModel, error) {
	expected := signatureKey(notif.OrderID, notif.StatusCode, notif.GrossAmount, s.ServerKey)
	if !strings.EqualFold(notif.SignatureKey, expected) {
		return nil, ErrInvalidSignature
	}

	raw, _ := json.Marshal(notif)

	var payment model.PaymentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "payment_order_id = ?", notif.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		gross, err := strconv.ParseFloat(notif.GrossAmount, 64)
		if err != nil || int64(math.Round(gross)) != MinorUnits(payment.PaymentGrossAmount) {
			return ErrAmountMismatch
		}

		switch notif.TransactionStatus {
		case "capture", "settlement":
			if payment.PaymentStatus == model.PaymentStatusPaid {
				// already settled, nothing to do
				return nil
			}
			now := time.Now()
			if err := tx.Model(&model.PaymentModel{}).
				Where("payment_id = ?", payment.PaymentID).
				Updates(map[string]interface{}{
					"payment_status":           model.PaymentStatusPaid,
					"payment_paid_at":          now,
					"payment_raw_notification": raw,
				}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.FineModel{}).
				Where("fine_id = ?", payment.PaymentFineID).
				Update("fine_status", model.FineStatusPaid).Error; err != nil {
				return err
			}
			payment.PaymentStatus = model.PaymentStatusPaid
			payment.PaymentPaidAt = &now

		case "expire":
			return s.markPayment(tx, &payment, model.PaymentStatusExpired, raw)
		case "cancel", "deny":
			return s.markPayment(tx, &payment, model.PaymentStatusCanceled, raw)
		default:
			// pending and other intermediate states: archive only
			return tx.Model(&model.PaymentModel{}).
				Where("payment_id = ?", payment.PaymentID).
				Update("payment_raw_notification", raw).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *SettlementService) markPayment(tx *gorm.DB, payment *model.PaymentModel, status string, raw []byte) error {
	if payment.PaymentStatus == model.PaymentStatusPaid {
		// a settled payment never regresses
		return nil
	}
	if err := tx.Model(&model.PaymentModel{}).
		Where("payment_id = ?", payment.PaymentID).
		Updates(map[string]interface{}{
			"payment_status":           status,
			"payment_raw_notification": raw,
		}).Error; err != nil {
		return err
	}
	payment.PaymentStatus = status
	return nil
}

// MinorUnits converts a currency amount to minor units for the gateway.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// signatureKey is the gateway's notification signature:
// sha512(order_id + status_code + gross_amount + server_key), hex.
func signatureKey(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
