package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookRequest struct {
	BookTitle  string `json:"book_title" validate:"required"`
	AuthorName string `json:"author_name" validate:"required"`
	BookISBN   string `json:"book_isbn" validate:"required,min=10,max=13"`
	BookGenre  string `json:"book_genre"`
}

type UpdateBookRequest struct {
	BookTitle  string `json:"book_title" validate:"required"`
	AuthorName string `json:"author_name" validate:"required"`
	BookISBN   string `json:"book_isbn" validate:"required,min=10,max=13"`
	BookGenre  string `json:"book_genre"`
	BookStatus string `json:"book_status" validate:"omitempty,oneof='Available' 'Checked Out'"`
}

// BookWithAuthorResponse is a list/search row with the author resolved by
// an explicit join.
type BookWithAuthorResponse struct {
	BookID     uuid.UUID `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	AuthorName string    `json:"author_name,omitempty"`
	BookISBN   string    `json:"book_isbn"`
	BookGenre  string    `json:"book_genre,omitempty"`
	BookStatus string    `json:"book_status"`
}

// LoanBorrowerResponse is one loan-ledger row for a book, borrower joined.
type LoanBorrowerResponse struct {
	LoanID           uuid.UUID  `json:"loan_id"`
	LoanMemberID     uuid.UUID  `json:"loan_member_id"`
	MemberName       string     `json:"member_name"`
	LoanCheckoutDate time.Time  `json:"loan_checkout_date"`
	LoanDueDate      time.Time  `json:"loan_due_date"`
	LoanReturnDate   *time.Time `json:"loan_return_date,omitempty"`
}

type BookDetailResponse struct {
	Book        BookWithAuthorResponse `json:"book"`
	ActiveLoan  *LoanBorrowerResponse  `json:"active_loan,omitempty"`
	LoanHistory []LoanBorrowerResponse `json:"loan_history"`
}
