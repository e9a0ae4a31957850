package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	authorModel "bookworm_backend/internals/features/catalog/authors/model"
	bookModel "bookworm_backend/internals/features/catalog/books/model"
	fineModel "bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&fineModel.FineModel{},
	))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, email string) memberModel.MemberModel {
	t.Helper()
	m := memberModel.MemberModel{
		MemberFirstName: "Jane",
		MemberLastName:  "Reader",
		MemberEmail:     email,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func seedBook(t *testing.T, db *gorm.DB, title, isbn string) bookModel.BookModel {
	t.Helper()
	b := bookModel.BookModel{
		BookTitle: title,
		BookISBN:  isbn,
	}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func uuidMust(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func fixedClock(day int) func() time.Time {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return base.AddDate(0, 0, day) }
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a loan and flips the book status", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		svc.Now = fixedClock(0)

		member := seedMember(t, db, "jane@example.com")
		book := seedBook(t, db, "The Go Programming Language", "9780134190440")

		loan, err := svc.Checkout(ctx, book.BookID, member.MemberID)
		require.NoError(t, err)
		require.NotNil(t, loan)

		assert.Equal(t, book.BookID, loan.LoanBookID)
		assert.Equal(t, member.MemberID, loan.LoanMemberID)
		assert.Nil(t, loan.LoanReturnDate)
		assert.Equal(t, loan.LoanCheckoutDate.AddDate(0, 0, loanModel.LoanPeriodDays), loan.LoanDueDate)

		var got bookModel.BookModel
		require.NoError(t, db.First(&got, "book_id = ?", book.BookID).Error)
		assert.Equal(t, bookModel.BookStatusCheckedOut, got.BookStatus)

		var openLoans int64
		db.Model(&loanModel.LoanModel{}).
			Where("loan_book_id = ? AND loan_return_date IS NULL", book.BookID).
			Count(&openLoans)
		assert.EqualValues(t, 1, openLoans)
	})

	t.Run("unknown member", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		book := seedBook(t, db, "Dune", "9780441172719")

		_, err := svc.Checkout(ctx, book.BookID, uuidMust(t))
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("unknown book", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		member := seedMember(t, db, "jane@example.com")

		_, err := svc.Checkout(ctx, uuidMust(t), member.MemberID)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("second checkout fails and creates no loan", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		svc.Now = fixedClock(0)

		alice := seedMember(t, db, "alice@example.com")
		bob := seedMember(t, db, "bob@example.com")
		book := seedBook(t, db, "Dune", "9780441172719")

		_, err := svc.Checkout(ctx, book.BookID, alice.MemberID)
		require.NoError(t, err)

		_, err = svc.Checkout(ctx, book.BookID, bob.MemberID)
		assert.ErrorIs(t, err, ErrBookNotAvailable)

		var loans int64
		db.Model(&loanModel.LoanModel{}).Where("loan_book_id = ?", book.BookID).Count(&loans)
		assert.EqualValues(t, 1, loans)
	})
}

func TestReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("on-time return creates no fine", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		svc.Now = fixedClock(0)

		member := seedMember(t, db, "jane@example.com")
		book := seedBook(t, db, "Dune", "9780441172719")
		_, err := svc.Checkout(ctx, book.BookID, member.MemberID)
		require.NoError(t, err)

		svc.Now = fixedClock(10)
		loan, fine, err := svc.Return(ctx, book.BookID)
		require.NoError(t, err)
		require.NotNil(t, loan)
		assert.Nil(t, fine)
		require.NotNil(t, loan.LoanReturnDate)

		var got bookModel.BookModel
		require.NoError(t, db.First(&got, "book_id = ?", book.BookID).Error)
		assert.Equal(t, bookModel.BookStatusAvailable, got.BookStatus)

		var fines int64
		db.Model(&fineModel.FineModel{}).Count(&fines)
		assert.EqualValues(t, 0, fines)
	})

	t.Run("return exactly on the due date creates no fine", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		svc.Now = fixedClock(0)

		member := seedMember(t, db, "jane@example.com")
		book := seedBook(t, db, "Dune", "9780441172719")
		_, err := svc.Checkout(ctx, book.BookID, member.MemberID)
		require.NoError(t, err)

		svc.Now = fixedClock(loanModel.LoanPeriodDays)
		_, fine, err := svc.Return(ctx, book.BookID)
		require.NoError(t, err)
		assert.Nil(t, fine)
	})

	t.Run("late return assesses one dollar per overdue day", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)
		svc.Now = fixedClock(0)

		member := seedMember(t, db, "jane@example.com")
		book := seedBook(t, db, "Dune", "9780441172719")
		_, err := svc.Checkout(ctx, book.BookID, member.MemberID)
		require.NoError(t, err)

		// due on day 14, returned on day 20
		svc.Now = fixedClock(20)
		loan, fine, err := svc.Return(ctx, book.BookID)
		require.NoError(t, err)
		require.NotNil(t, fine)

		assert.InDelta(t, 6.00, fine.FineAmount, 0.001)
		assert.Equal(t, fineModel.FineStatusUnpaid, fine.FineStatus)
		assert.Equal(t, loan.LoanID, fine.FineLoanID)
		assert.Equal(t, member.MemberID, fine.FineMemberID)

		var got bookModel.BookModel
		require.NoError(t, db.First(&got, "book_id = ?", book.BookID).Error)
		assert.Equal(t, bookModel.BookStatusAvailable, got.BookStatus)
	})

	t.Run("no active loan mutates nothing", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)

		book := seedBook(t, db, "Dune", "9780441172719")
		_, _, err := svc.Return(ctx, book.BookID)
		assert.ErrorIs(t, err, ErrNoActiveLoan)

		var got bookModel.BookModel
		require.NoError(t, db.First(&got, "book_id = ?", book.BookID).Error)
		assert.Equal(t, bookModel.BookStatusAvailable, got.BookStatus)
	})

	t.Run("unknown book", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewLendingService(db)

		_, _, err := svc.Return(ctx, uuidMust(t))
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		returned time.Time
		expected int
	}{
		{"early return", due.AddDate(0, 0, -4), 0},
		{"on the due date", due, 0},
		{"one day late", due.AddDate(0, 0, 1), 1},
		{"six days late", due.AddDate(0, 0, 6), 6},
		{"time of day is ignored", due.AddDate(0, 0, 2).Add(23 * time.Hour), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, OverdueDays(due, tc.returned))
		})
	}
}
