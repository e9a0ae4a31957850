package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bookworm_backend/internals/features/lending/loans/dto"
	"bookworm_backend/internals/features/lending/loans/service"
	helper "bookworm_backend/internals/helpers"
)

type LoanController struct {
	Lending *service.LendingService
}

func NewLoanController(lending *service.LendingService) *LoanController {
	return &LoanController{Lending: lending}
}

// Checkout lends a book to a member.
func (ctrl *LoanController) Checkout(c *fiber.Ctx) error {
	var body dto.CheckoutRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	bookID, _ := uuid.Parse(body.BookID)
	memberID, _ := uuid.Parse(body.MemberID)

	loan, err := ctrl.Lending.Checkout(c.Context(), bookID, memberID)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Member not found")
	case errors.Is(err, service.ErrBookNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrBookNotAvailable):
		return helper.Error(c, fiber.StatusConflict, "Book is not available")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, "Checkout failed")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Book checked out successfully", loan)
}

// Return closes the open loan for a book and reports the assessed fine, if any.
func (ctrl *LoanController) Return(c *fiber.Ctx) error {
	var body dto.ReturnRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	bookID, _ := uuid.Parse(body.BookID)

	loan, fine, err := ctrl.Lending.Return(c.Context(), bookID)
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrNoActiveLoan):
		return helper.Error(c, fiber.StatusNotFound, "No active loan found for this book")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, "Return failed")
	}

	if fine != nil {
		days := service.OverdueDays(loan.LoanDueDate, *loan.LoanReturnDate)
		msg := fmt.Sprintf("Book returned late (%d days). Fine of $%.2f has been applied.", days, fine.FineAmount)
		return helper.Success(c, msg, fiber.Map{"loan": loan, "fine": fine, "overdue_days": days})
	}
	return helper.Success(c, "Book returned successfully", fiber.Map{"loan": loan})
}
