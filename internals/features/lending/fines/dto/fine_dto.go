package dto

import (
	"time"

	"github.com/google/uuid"
)

// FineWithBookResponse is the joined fee-listing row: the store layer
// resolves the book title up front instead of leaving relation traversal
// to the caller.
type FineWithBookResponse struct {
	FineID     uuid.UUID `json:"fine_id"`
	FineAmount float64   `json:"fine_amount"`
	FineStatus string    `json:"fine_status"`
	BookTitle  string    `json:"book_title"`
	LoanDueDate time.Time `json:"loan_due_date"`
	CreatedAt  time.Time `json:"created_at"`
}
