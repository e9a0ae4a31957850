package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	bookModel "bookworm_backend/internals/features/catalog/books/model"
	fineModel "bookworm_backend/internals/features/lending/fines/model"
	loanModel "bookworm_backend/internals/features/lending/loans/model"
	memberDTO "bookworm_backend/internals/features/membership/members/dto"
	memberModel "bookworm_backend/internals/features/membership/members/model"
	helper "bookworm_backend/internals/helpers"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

type recentActivityRow struct {
	LoanID           uuid.UUID  `json:"loan_id"`
	BookTitle        string     `json:"book_title"`
	MemberName       string     `json:"member_name"`
	LoanCheckoutDate time.Time  `json:"loan_checkout_date"`
	LoanDueDate      time.Time  `json:"loan_due_date"`
	LoanReturnDate   *time.Time `json:"loan_return_date,omitempty"`
}

type debtorRow struct {
	MemberID        uuid.UUID `json:"member_id"`
	MemberFirstName string    `json:"member_first_name"`
	MemberLastName  string    `json:"member_last_name"`
	TotalDebt       float64   `json:"total_debt"`
}

// Dashboard renders the command center for librarians and the personal
// dashboard for members.
func (ctrl *DashboardController) Dashboard(c *fiber.Ctx) error {
	actor := helper.ActorFromCtx(c)
	if actor.IsLibrarian() {
		return ctrl.librarianDashboard(c)
	}
	return ctrl.memberDashboard(c, actor)
}

func (ctrl *DashboardController) librarianDashboard(c *fiber.Ctx) error {
	db := ctrl.DB.WithContext(c.Context())
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var totalBooks, booksCheckedOut, totalMembers, loansDueToday int64
	if err := db.Model(&bookModel.BookModel{}).Count(&totalBooks).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}
	db.Model(&bookModel.BookModel{}).
		Where("book_status = ?", bookModel.BookStatusCheckedOut).
		Count(&booksCheckedOut)
	db.Model(&memberModel.MemberModel{}).Count(&totalMembers)
	db.Model(&loanModel.LoanModel{}).
		Where("loan_due_date = ? AND loan_return_date IS NULL", today).
		Count(&loansDueToday)

	var totalOutstanding float64
	db.Model(&fineModel.FineModel{}).
		Where("fine_status = ?", fineModel.FineStatusUnpaid).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&totalOutstanding)

	var recent []recentActivityRow
	db.Table("loans").
		Select("loans.loan_id, books.book_title, members.member_first_name || ' ' || members.member_last_name AS member_name, loans.loan_checkout_date, loans.loan_due_date, loans.loan_return_date").
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Joins("JOIN members ON members.member_id = loans.loan_member_id").
		Order("loans.loan_checkout_date desc, loans.created_at desc").
		Limit(5).
		Scan(&recent)

	var debtors []debtorRow
	db.Table("fines").
		Select("members.member_id, members.member_first_name, members.member_last_name, SUM(fines.fine_amount) AS total_debt").
		Joins("JOIN members ON members.member_id = fines.fine_member_id").
		Where("fines.fine_status = ?", fineModel.FineStatusUnpaid).
		Group("members.member_id, members.member_first_name, members.member_last_name").
		Order("total_debt desc").
		Limit(5).
		Scan(&debtors)

	return helper.Success(c, "OK", fiber.Map{
		"is_librarian":            true,
		"total_books":             totalBooks,
		"books_checked_out":       booksCheckedOut,
		"books_available":         totalBooks - booksCheckedOut,
		"total_members":           totalMembers,
		"loans_due_today":         loansDueToday,
		"total_outstanding_fines": totalOutstanding,
		"recent_activity":         recent,
		"debtors":                 debtors,
	})
}

func (ctrl *DashboardController) memberDashboard(c *fiber.Ctx, actor helper.Actor) error {
	db := ctrl.DB.WithContext(c.Context())

	var member memberModel.MemberModel
	if err := db.First(&member, "LOWER(member_email) = LOWER(?)", actor.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no library card linked to this identity; still a valid session
			return helper.Success(c, "We couldn't find a library card linked to your email.", fiber.Map{
				"is_librarian": false,
			})
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}

	var myLoans []memberDTO.LoanWithBookResponse
	db.Table("loans").
		Select("loans.loan_id, loans.loan_book_id, books.book_title, loans.loan_checkout_date, loans.loan_due_date, loans.loan_return_date").
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Where("loans.loan_member_id = ? AND loans.loan_return_date IS NULL", member.MemberID).
		Scan(&myLoans)

	var finesCount int64
	var totalFines float64
	db.Model(&fineModel.FineModel{}).
		Where("fine_member_id = ? AND fine_status = ?", member.MemberID, fineModel.FineStatusUnpaid).
		Count(&finesCount)
	db.Model(&fineModel.FineModel{}).
		Where("fine_member_id = ? AND fine_status = ?", member.MemberID, fineModel.FineStatusUnpaid).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&totalFines)

	return helper.Success(c, "OK", fiber.Map{
		"is_librarian":      false,
		"member":            member,
		"my_loans":          myLoans,
		"my_fines_count":    finesCount,
		"total_fine_amount": totalFines,
	})
}
