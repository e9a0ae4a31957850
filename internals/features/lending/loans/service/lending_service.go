package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookModel "bookworm_backend/internals/features/catalog/books/model"
	fineModel "bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrBookNotFound     = errors.New("book not found")
	ErrBookNotAvailable = errors.New("book is not available")
	ErrNoActiveLoan     = errors.New("no active loan found for this book")
)

// LendingService owns the checkout/return workflow. It is the only writer
// of loans, fines and book status; every operation runs in one transaction
// so the loan ledger and the derived book status never diverge.
type LendingService struct {
	DB *gorm.DB

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewLendingService(db *gorm.DB) *LendingService {
	return &LendingService{DB: db, Now: time.Now}
}

func (s *LendingService) today() time.Time {
	n := s.Now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Checkout lends a book to a member for the fixed loan period.
func (s *LendingService) Checkout(ctx context.Context, bookID, memberID uuid.UUID) (*loanModel.LoanModel, error) {
	var loan *loanModel.LoanModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member memberModel.MemberModel
		if err := tx.First(&member, "member_id = ?", memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		var book bookModel.BookModel
		if err := tx.First(&book, "book_id = ?", bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		// Compare-and-set on the status column: of two concurrent
		// checkouts only one update matches the Available row.
		res := tx.Model(&bookModel.BookModel{}).
			Where("book_id = ? AND book_status = ?", bookID, bookModel.BookStatusAvailable).
			Update("book_status", bookModel.BookStatusCheckedOut)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookNotAvailable
		}

		today := s.today()
		l := loanModel.LoanModel{
			LoanBookID:       bookID,
			LoanMemberID:     memberID,
			LoanCheckoutDate: today,
			LoanDueDate:      today.AddDate(0, 0, loanModel.LoanPeriodDays),
		}
		if err := tx.Create(&l).Error; err != nil {
			return err
		}
		loan = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes the open loan for a book and assesses the overdue fine.
// The returned fine is nil when the book came back on time.
func (s *LendingService) Return(ctx context.Context, bookID uuid.UUID) (*loanModel.LoanModel, *fineModel.FineModel, error) {
	var (
		loan *loanModel.LoanModel
		fine *fineModel.FineModel
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book bookModel.BookModel
		if err := tx.First(&book, "book_id = ?", bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		var l loanModel.LoanModel
		if err := tx.
			Where("loan_book_id = ? AND loan_return_date IS NULL", bookID).
			First(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveLoan
			}
			return err
		}

		returnDate := s.today()
		l.LoanReturnDate = &returnDate
		if err := tx.Model(&loanModel.LoanModel{}).
			Where("loan_id = ?", l.LoanID).
			Update("loan_return_date", returnDate).Error; err != nil {
			return err
		}

		if err := tx.Model(&bookModel.BookModel{}).
			Where("book_id = ?", bookID).
			Update("book_status", bookModel.BookStatusAvailable).Error; err != nil {
			return err
		}

		if days := OverdueDays(l.LoanDueDate, returnDate); days > 0 {
			f := fineModel.FineModel{
				FineLoanID:   l.LoanID,
				FineMemberID: l.LoanMemberID,
				FineAmount:   float64(days) * fineModel.FineRatePerDay,
				FineStatus:   fineModel.FineStatusUnpaid,
			}
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
			fine = &f
		}

		loan = &l
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return loan, fine, nil
}

// OverdueDays counts whole calendar days between due date and return date,
// zero when the return is on time or early. Returning exactly on the due
// date is not late.
func OverdueDays(dueDate, returnDate time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	ret := time.Date(returnDate.Year(), returnDate.Month(), returnDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Round(ret.Sub(due).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
