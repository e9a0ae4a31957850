package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterMemberRequest struct {
	MemberFirstName   string `json:"member_first_name" validate:"required"`
	MemberLastName    string `json:"member_last_name" validate:"required"`
	MemberEmail       string `json:"member_email" validate:"required,email"`
	MemberPhoneNumber string `json:"member_phone_number"`
}

// LoanWithBookResponse is one loan-ledger row for a member, book joined.
type LoanWithBookResponse struct {
	LoanID           uuid.UUID  `json:"loan_id"`
	LoanBookID       uuid.UUID  `json:"loan_book_id"`
	BookTitle        string     `json:"book_title"`
	LoanCheckoutDate time.Time  `json:"loan_checkout_date"`
	LoanDueDate      time.Time  `json:"loan_due_date"`
	LoanReturnDate   *time.Time `json:"loan_return_date,omitempty"`
}

type FineHistoryResponse struct {
	FineID     uuid.UUID `json:"fine_id"`
	FineAmount float64   `json:"fine_amount"`
	FineStatus string    `json:"fine_status"`
	BookTitle  string    `json:"book_title"`
	CreatedAt  time.Time `json:"created_at"`
}
