package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthorModel struct {
	AuthorID uuid.UUID `gorm:"column:author_id;type:uuid;primaryKey" json:"author_id"`

	AuthorName        string `gorm:"column:author_name;type:varchar(255);not null" json:"author_name"`
	AuthorBiography   string `gorm:"column:author_biography;type:text" json:"author_biography,omitempty"`
	AuthorBirthYear   string `gorm:"column:author_birth_year;type:varchar(10)" json:"author_birth_year,omitempty"`
	AuthorNationality string `gorm:"column:author_nationality;type:varchar(100)" json:"author_nationality,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

func (m *AuthorModel) BeforeCreate(tx *gorm.DB) error {
	if m.AuthorID == uuid.Nil {
		m.AuthorID = uuid.New()
	}
	return nil
}
