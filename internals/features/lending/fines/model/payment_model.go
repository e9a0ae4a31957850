package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusExpired  = "expired"
	PaymentStatusCanceled = "canceled"
)

// PaymentModel records one settlement session at the gateway. The confirm
// webhook is validated against this row (order id + gross amount), so a
// callback can never mark a fine Paid for an amount that was never charged.
type PaymentModel struct {
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`

	PaymentFineID  uuid.UUID `gorm:"column:payment_fine_id;type:uuid;not null;index" json:"payment_fine_id"`
	PaymentOrderID string    `gorm:"column:payment_order_id;type:varchar(100);not null;unique" json:"payment_order_id"`

	PaymentGrossAmount float64 `gorm:"column:payment_gross_amount;type:numeric(12,2);not null" json:"payment_gross_amount"`
	PaymentGateway     string  `gorm:"column:payment_gateway;type:varchar(50);not null;default:'midtrans'" json:"payment_gateway"`

	PaymentToken       string `gorm:"column:payment_token;type:text" json:"payment_token,omitempty"`
	PaymentRedirectURL string `gorm:"column:payment_redirect_url;type:text" json:"payment_redirect_url,omitempty"`

	PaymentStatus string     `gorm:"column:payment_status;type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentPaidAt *time.Time `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`

	// Last raw gateway notification, kept for auditing.
	PaymentRawNotification datatypes.JSON `gorm:"column:payment_raw_notification;type:jsonb" json:"payment_raw_notification,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	if m.PaymentGateway == "" {
		m.PaymentGateway = "midtrans"
	}
	if m.PaymentStatus == "" {
		m.PaymentStatus = PaymentStatusPending
	}
	return nil
}
