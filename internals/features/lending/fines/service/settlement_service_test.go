package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"bookworm_backend/internals/constants"
	authorModel "bookworm_backend/internals/features/catalog/authors/model"
	bookModel "bookworm_backend/internals/features/catalog/books/model"
	"bookworm_backend/internals/features/lending/fines/dto"
	"bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
	helper "bookworm_backend/internals/helpers"
)

const testServerKey = "SB-Mid-server-test-key"

type stubSnap struct {
	calls int
	fail  bool
}

func (s *stubSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.calls++
	if s.fail {
		return nil, &midtrans.Error{Message: "gateway down"}
	}
	return &snap.Response{
		Token:       "snap-token-123",
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-123",
	}, nil
}

type settlementFixture struct {
	db      *gorm.DB
	svc     *SettlementService
	snap    *stubSnap
	member  memberModel.MemberModel
	book    bookModel.BookModel
	loan    loanModel.LoanModel
	fine    model.FineModel
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&authorModel.AuthorModel{},
		&bookModel.BookModel{},
		&memberModel.MemberModel{},
		&loanModel.LoanModel{},
		&model.FineModel{},
		&model.PaymentModel{},
	))

	member := memberModel.MemberModel{
		MemberFirstName: "Jane",
		MemberLastName:  "Reader",
		MemberEmail:     "jane@example.com",
	}
	require.NoError(t, db.Create(&member).Error)

	book := bookModel.BookModel{BookTitle: "Dune", BookISBN: "9780441172719"}
	require.NoError(t, db.Create(&book).Error)

	checkout := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	returned := checkout.AddDate(0, 0, 20)
	loan := loanModel.LoanModel{
		LoanBookID:       book.BookID,
		LoanMemberID:     member.MemberID,
		LoanCheckoutDate: checkout,
		LoanDueDate:      checkout.AddDate(0, 0, 14),
		LoanReturnDate:   &returned,
	}
	require.NoError(t, db.Create(&loan).Error)

	fine := model.FineModel{
		FineLoanID:   loan.LoanID,
		FineMemberID: member.MemberID,
		FineAmount:   6.00,
	}
	require.NoError(t, db.Create(&fine).Error)

	stub := &stubSnap{}
	svc := &SettlementService{
		DB:        db,
		Snap:      stub,
		ServerKey: testServerKey,
		BaseURL:   "http://localhost:3000",
	}
	return &settlementFixture{db: db, svc: svc, snap: stub, member: member, book: book, loan: loan, fine: fine}
}

func (f *settlementFixture) signedNotification(orderID, status, grossAmount string) *dto.PaymentNotificationRequest {
	statusCode := "200"
	return &dto.PaymentNotificationRequest{
		OrderID:           orderID,
		StatusCode:        statusCode,
		GrossAmount:       grossAmount,
		TransactionStatus: status,
		SignatureKey:      signatureKey(orderID, statusCode, grossAmount, testServerKey),
	}
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("owner may pay their own fine", func(t *testing.T) {
		f := newSettlementFixture(t)
		actor := helper.Actor{Email: "Jane@Example.com", Role: constants.RoleMember}

		payment, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		require.NoError(t, err)
		require.NotNil(t, payment)

		assert.Equal(t, 1, f.snap.calls)
		assert.Equal(t, "snap-token-123", payment.PaymentToken)
		assert.Contains(t, payment.PaymentOrderID, "FINE-")
		assert.InDelta(t, 6.00, payment.PaymentGrossAmount, 0.001)

		var stored model.PaymentModel
		require.NoError(t, f.db.First(&stored, "payment_order_id = ?", payment.PaymentOrderID).Error)
		assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)
	})

	t.Run("librarian may pay any fine", func(t *testing.T) {
		f := newSettlementFixture(t)
		actor := helper.Actor{Email: "desk@bookworm.local", Role: constants.RoleLibrarian}

		_, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.snap.calls)
	})

	t.Run("stranger is rejected before any gateway call", func(t *testing.T) {
		f := newSettlementFixture(t)
		actor := helper.Actor{Email: "other@example.com", Role: constants.RoleMember}

		_, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		assert.ErrorIs(t, err, ErrNotFineOwner)
		assert.Equal(t, 0, f.snap.calls)
	})

	t.Run("unknown fine", func(t *testing.T) {
		f := newSettlementFixture(t)
		actor := helper.Actor{Email: "jane@example.com", Role: constants.RoleMember}

		_, err := f.svc.InitiatePayment(ctx, actor, uuid.New())
		assert.ErrorIs(t, err, ErrFineNotFound)
		assert.Equal(t, 0, f.snap.calls)
	})

	t.Run("already paid fine", func(t *testing.T) {
		f := newSettlementFixture(t)
		require.NoError(t, f.db.Model(&model.FineModel{}).
			Where("fine_id = ?", f.fine.FineID).
			Update("fine_status", model.FineStatusPaid).Error)

		actor := helper.Actor{Email: "jane@example.com", Role: constants.RoleMember}
		_, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		assert.ErrorIs(t, err, ErrFineAlreadyPaid)
		assert.Equal(t, 0, f.snap.calls)
	})

	t.Run("gateway failure surfaces as external error", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.snap.fail = true

		actor := helper.Actor{Email: "jane@example.com", Role: constants.RoleMember}
		_, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	initiate := func(t *testing.T, f *settlementFixture) *model.PaymentModel {
		t.Helper()
		actor := helper.Actor{Email: "jane@example.com", Role: constants.RoleMember}
		payment, err := f.svc.InitiatePayment(ctx, actor, f.fine.FineID)
		require.NoError(t, err)
		return payment
	}

	t.Run("settlement marks payment and fine paid", func(t *testing.T) {
		f := newSettlementFixture(t)
		payment := initiate(t, f)

		notif := f.signedNotification(payment.PaymentOrderID, "settlement", "600.00")
		got, err := f.svc.ConfirmPayment(ctx, notif)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)

		var fine model.FineModel
		require.NoError(t, f.db.First(&fine, "fine_id = ?", f.fine.FineID).Error)
		assert.Equal(t, model.FineStatusPaid, fine.FineStatus)
	})

	t.Run("second confirmation is a no-op", func(t *testing.T) {
		f := newSettlementFixture(t)
		payment := initiate(t, f)

		notif := f.signedNotification(payment.PaymentOrderID, "settlement", "600.00")
		_, err := f.svc.ConfirmPayment(ctx, notif)
		require.NoError(t, err)

		got, err := f.svc.ConfirmPayment(ctx, notif)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)

		var fine model.FineModel
		require.NoError(t, f.db.First(&fine, "fine_id = ?", f.fine.FineID).Error)
		assert.Equal(t, model.FineStatusPaid, fine.FineStatus)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		f := newSettlementFixture(t)
		payment := initiate(t, f)

		notif := f.signedNotification(payment.PaymentOrderID, "settlement", "600.00")
		notif.SignatureKey = "forged"
		_, err := f.svc.ConfirmPayment(ctx, notif)
		assert.ErrorIs(t, err, ErrInvalidSignature)

		var fine model.FineModel
		require.NoError(t, f.db.First(&fine, "fine_id = ?", f.fine.FineID).Error)
		assert.Equal(t, model.FineStatusUnpaid, fine.FineStatus)
	})

	t.Run("amount mismatch is rejected", func(t *testing.T) {
		f := newSettlementFixture(t)
		payment := initiate(t, f)

		notif := f.signedNotification(payment.PaymentOrderID, "settlement", "100.00")
		_, err := f.svc.ConfirmPayment(ctx, notif)
		assert.ErrorIs(t, err, ErrAmountMismatch)

		var fine model.FineModel
		require.NoError(t, f.db.First(&fine, "fine_id = ?", f.fine.FineID).Error)
		assert.Equal(t, model.FineStatusUnpaid, fine.FineStatus)
	})

	t.Run("unknown order id", func(t *testing.T) {
		f := newSettlementFixture(t)
		notif := f.signedNotification("FINE-unknown-1", "settlement", "600.00")
		_, err := f.svc.ConfirmPayment(ctx, notif)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("expiry does not touch the fine", func(t *testing.T) {
		f := newSettlementFixture(t)
		payment := initiate(t, f)

		notif := f.signedNotification(payment.PaymentOrderID, "expire", "600.00")
		got, err := f.svc.ConfirmPayment(ctx, notif)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusExpired, got.PaymentStatus)

		var fine model.FineModel
		require.NoError(t, f.db.First(&fine, "fine_id = ?", f.fine.FineID).Error)
		assert.Equal(t, model.FineStatusUnpaid, fine.FineStatus)
	})
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 600, MinorUnits(6.00))
	assert.EqualValues(t, 150, MinorUnits(1.50))
	assert.EqualValues(t, 0, MinorUnits(0))
}
