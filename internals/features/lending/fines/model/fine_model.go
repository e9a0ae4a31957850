package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FineStatusUnpaid = "Unpaid"
	FineStatusPaid   = "Paid"
)

// FineRatePerDay is the flat charge per overdue day, in currency units.
const FineRatePerDay = 1.00

type FineModel struct {
	FineID uuid.UUID `gorm:"column:fine_id;type:uuid;primaryKey" json:"fine_id"`

	FineLoanID   uuid.UUID `gorm:"column:fine_loan_id;type:uuid;not null;index" json:"fine_loan_id"`
	FineMemberID uuid.UUID `gorm:"column:fine_member_id;type:uuid;not null;index" json:"fine_member_id"`

	FineAmount float64 `gorm:"column:fine_amount;type:numeric(12,2);not null" json:"fine_amount"`
	FineStatus string  `gorm:"column:fine_status;type:varchar(50);not null;default:'Unpaid'" json:"fine_status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FineModel) TableName() string {
	return "fines"
}

func (m *FineModel) BeforeCreate(tx *gorm.DB) error {
	if m.FineID == uuid.Nil {
		m.FineID = uuid.New()
	}
	if m.FineStatus == "" {
		m.FineStatus = FineStatusUnpaid
	}
	return nil
}
