package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MemberStatusActive = "Active"

type MemberModel struct {
	MemberID uuid.UUID `gorm:"column:member_id;type:uuid;primaryKey" json:"member_id"`

	MemberFirstName string `gorm:"column:member_first_name;type:varchar(100);not null" json:"member_first_name"`
	MemberLastName  string `gorm:"column:member_last_name;type:varchar(100);not null" json:"member_last_name"`

	// Join key to the external identity provider.
	MemberEmail string `gorm:"column:member_email;type:varchar(255);not null;unique" json:"member_email"`

	MemberPhoneNumber string `gorm:"column:member_phone_number;type:varchar(20)" json:"member_phone_number,omitempty"`
	MemberStatus      string `gorm:"column:member_status;type:varchar(50);not null;default:'Active'" json:"member_status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MemberModel) TableName() string {
	return "members"
}

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	if m.MemberStatus == "" {
		m.MemberStatus = MemberStatusActive
	}
	return nil
}
