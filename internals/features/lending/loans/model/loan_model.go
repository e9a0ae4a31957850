package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanPeriodDays is the fixed lending period; the due date is always
// checkout date + LoanPeriodDays.
const LoanPeriodDays = 14

type LoanModel struct {
	LoanID uuid.UUID `gorm:"column:loan_id;type:uuid;primaryKey" json:"loan_id"`

	LoanBookID   uuid.UUID `gorm:"column:loan_book_id;type:uuid;not null;index" json:"loan_book_id"`
	LoanMemberID uuid.UUID `gorm:"column:loan_member_id;type:uuid;not null;index" json:"loan_member_id"`

	LoanCheckoutDate time.Time `gorm:"column:loan_checkout_date;type:date;not null" json:"loan_checkout_date"`
	LoanDueDate      time.Time `gorm:"column:loan_due_date;type:date;not null" json:"loan_due_date"`

	// NULL while the loan is open; the loan ledger is the source of truth
	// for "book currently out".
	LoanReturnDate *time.Time `gorm:"column:loan_return_date;type:date" json:"loan_return_date,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LoanModel) TableName() string {
	return "loans"
}

func (m *LoanModel) BeforeCreate(tx *gorm.DB) error {
	if m.LoanID == uuid.Nil {
		m.LoanID = uuid.New()
	}
	return nil
}
