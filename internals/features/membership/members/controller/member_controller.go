package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookworm_backend/internals/features/membership/members/dto"
	"bookworm_backend/internals/features/membership/members/model"
	helper "bookworm_backend/internals/helpers"
)

type MemberController struct {
	DB *gorm.DB
}

func NewMemberController(db *gorm.DB) *MemberController {
	return &MemberController{DB: db}
}

// Register creates a new member with Active status.
func (ctrl *MemberController) Register(c *fiber.Ctx) error {
	var body dto.RegisterMemberRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	db := ctrl.DB.WithContext(c.Context())

	var dup model.MemberModel
	if err := db.First(&dup, "LOWER(member_email) = LOWER(?)", body.MemberEmail).Error; err == nil {
		return helper.Error(c, fiber.StatusConflict, "A member with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to register member")
	}

	member := model.MemberModel{
		MemberFirstName:   body.MemberFirstName,
		MemberLastName:    body.MemberLastName,
		MemberEmail:       body.MemberEmail,
		MemberPhoneNumber: body.MemberPhoneNumber,
		MemberStatus:      model.MemberStatusActive,
	}
	if err := db.Create(&member).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to register member")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Member registered successfully", member)
}

// List returns members, optionally filtered by a case-insensitive substring
// match over first name, last name, email and id (OR-combined).
func (ctrl *MemberController) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c, helper.DefaultListOpts)
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	tx := ctrl.DB.WithContext(c.Context()).Model(&model.MemberModel{})
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where(
			"LOWER(member_first_name) LIKE ? OR LOWER(member_last_name) LIKE ? OR LOWER(member_email) LIKE ? OR LOWER(CAST(member_id AS TEXT)) LIKE ?",
			like, like, like, like,
		)
	}

	var members []model.MemberModel
	if err := tx.Order("member_last_name asc, member_first_name asc").
		Limit(page.Limit()).Offset(page.Offset()).
		Find(&members).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch members")
	}

	return helper.Success(c, "OK", fiber.Map{"members": members, "query": c.Query("q")})
}

// Detail returns the member together with active loans, loan history and
// fine history, each joined with book titles up front.
func (ctrl *MemberController) Detail(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid member id")
	}
	db := ctrl.DB.WithContext(c.Context())

	var member model.MemberModel
	if err := db.First(&member, "member_id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Member not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch member")
	}

	loanSelect := "loans.loan_id, loans.loan_book_id, books.book_title, loans.loan_checkout_date, loans.loan_due_date, loans.loan_return_date"

	var activeLoans []dto.LoanWithBookResponse
	if err := db.Table("loans").
		Select(loanSelect).
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Where("loans.loan_member_id = ? AND loans.loan_return_date IS NULL", memberID).
		Scan(&activeLoans).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch active loans")
	}

	var loanHistory []dto.LoanWithBookResponse
	if err := db.Table("loans").
		Select(loanSelect).
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Where("loans.loan_member_id = ? AND loans.loan_return_date IS NOT NULL", memberID).
		Order("loans.loan_return_date desc").
		Scan(&loanHistory).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch loan history")
	}

	var fines []dto.FineHistoryResponse
	if err := db.Table("fines").
		Select("fines.fine_id, fines.fine_amount, fines.fine_status, books.book_title, fines.created_at").
		Joins("JOIN loans ON loans.loan_id = fines.fine_loan_id").
		Joins("JOIN books ON books.book_id = loans.loan_book_id").
		Where("fines.fine_member_id = ?", memberID).
		Order("fines.created_at desc").
		Scan(&fines).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch fines")
	}

	return helper.Success(c, "OK", fiber.Map{
		"member":       member,
		"active_loans": activeLoans,
		"loan_history": loanHistory,
		"fines":        fines,
	})
}
