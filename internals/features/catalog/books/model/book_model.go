package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookStatusAvailable  = "Available"
	BookStatusCheckedOut = "Checked Out"
)

type BookModel struct {
	BookID uuid.UUID `gorm:"column:book_id;type:uuid;primaryKey" json:"book_id"`

	BookTitle    string     `gorm:"column:book_title;type:varchar(255);not null" json:"book_title"`
	BookAuthorID *uuid.UUID `gorm:"column:book_author_id;type:uuid" json:"book_author_id,omitempty"`
	BookISBN     string     `gorm:"column:book_isbn;type:varchar(13);not null;unique" json:"book_isbn"`
	BookGenre    string     `gorm:"column:book_genre;type:varchar(100)" json:"book_genre,omitempty"`

	// Derived cache of the loan ledger; mutated only by checkout/return.
	BookStatus string `gorm:"column:book_status;type:varchar(50);not null;default:'Available'" json:"book_status"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BookModel) TableName() string {
	return "books"
}

func (m *BookModel) BeforeCreate(tx *gorm.DB) error {
	if m.BookID == uuid.Nil {
		m.BookID = uuid.New()
	}
	if m.BookStatus == "" {
		m.BookStatus = BookStatusAvailable
	}
	return nil
}
