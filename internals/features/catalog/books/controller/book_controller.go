package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authorModel "bookworm_backend/internals/features/catalog/authors/model"
	"bookworm_backend/internals/features/catalog/books/dto"
	"bookworm_backend/internals/features/catalog/books/model"
	helper "bookworm_backend/internals/helpers"
)

type BookController struct {
	DB *gorm.DB
}

func NewBookController(db *gorm.DB) *BookController {
	return &BookController{DB: db}
}

// Create adds a book to the catalog, creating the author on first mention.
func (ctrl *BookController) Create(c *fiber.Ctx) error {
	var body dto.CreateBookRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	var book model.BookModel
	err := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		var dup model.BookModel
		if err := tx.First(&dup, "book_isbn = ?", body.BookISBN).Error; err == nil {
			return errDuplicateISBN
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		author, err := getOrCreateAuthor(tx, body.AuthorName)
		if err != nil {
			return err
		}

		book = model.BookModel{
			BookTitle:    body.BookTitle,
			BookAuthorID: &author.AuthorID,
			BookISBN:     body.BookISBN,
			BookGenre:    body.BookGenre,
			BookStatus:   model.BookStatusAvailable,
		}
		return tx.Create(&book).Error
	})
	if err != nil {
		if errors.Is(err, errDuplicateISBN) {
			return helper.Error(c, fiber.StatusConflict, "A book with this ISBN is already registered")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to add book")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Book added successfully", book)
}

// List returns books, optionally filtered by a case-insensitive substring
// match over title, author name and ISBN (OR-combined). Unfiltered listing
// is capped by pagination.
func (ctrl *BookController) List(c *fiber.Ctx) error {
	page := helper.ParsePage(c, helper.DefaultListOpts)
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	tx := ctrl.DB.WithContext(c.Context()).
		Table("books").
		Select("books.book_id, books.book_title, authors.author_name, books.book_isbn, books.book_genre, books.book_status").
		Joins("LEFT JOIN authors ON authors.author_id = books.book_author_id")

	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where(
			"LOWER(books.book_title) LIKE ? OR LOWER(authors.author_name) LIKE ? OR LOWER(books.book_isbn) LIKE ?",
			like, like, like,
		)
	}

	var rows []dto.BookWithAuthorResponse
	if err := tx.Order("books.book_title asc").
		Limit(page.Limit()).Offset(page.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch books")
	}

	return helper.Success(c, "OK", fiber.Map{"books": rows, "query": c.Query("q")})
}

// Detail returns the book, its current borrower and its loan history.
func (ctrl *BookController) Detail(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid book id")
	}
	db := ctrl.DB.WithContext(c.Context())

	var row dto.BookWithAuthorResponse
	res := db.Table("books").
		Select("books.book_id, books.book_title, authors.author_name, books.book_isbn, books.book_genre, books.book_status").
		Joins("LEFT JOIN authors ON authors.author_id = books.book_author_id").
		Where("books.book_id = ?", bookID).
		Scan(&row)
	if res.Error != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch book")
	}
	if res.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Book not found")
	}

	loanSelect := "loans.loan_id, loans.loan_member_id, members.member_first_name || ' ' || members.member_last_name AS member_name, loans.loan_checkout_date, loans.loan_due_date, loans.loan_return_date"

	var active []dto.LoanBorrowerResponse
	if err := db.Table("loans").
		Select(loanSelect).
		Joins("JOIN members ON members.member_id = loans.loan_member_id").
		Where("loans.loan_book_id = ? AND loans.loan_return_date IS NULL", bookID).
		Scan(&active).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch active loan")
	}

	var history []dto.LoanBorrowerResponse
	if err := db.Table("loans").
		Select(loanSelect).
		Joins("JOIN members ON members.member_id = loans.loan_member_id").
		Where("loans.loan_book_id = ?", bookID).
		Order("loans.loan_checkout_date desc").
		Scan(&history).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to fetch loan history")
	}

	detail := dto.BookDetailResponse{Book: row, LoanHistory: history}
	if len(active) > 0 {
		detail.ActiveLoan = &active[0]
	}
	return helper.Success(c, "OK", detail)
}

// Update edits book details; a changed author name is resolved with the
// same get-or-create rule as Create.
func (ctrl *BookController) Update(c *fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid book id")
	}

	var body dto.UpdateBookRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.Validate.Struct(body); err != nil {
		return helper.ValidationError(c, err)
	}

	var book model.BookModel
	err = ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "book_id = ?", bookID).Error; err != nil {
			return err
		}

		author, err := getOrCreateAuthor(tx, body.AuthorName)
		if err != nil {
			return err
		}

		book.BookTitle = body.BookTitle
		book.BookAuthorID = &author.AuthorID
		book.BookISBN = body.BookISBN
		book.BookGenre = body.BookGenre
		if body.BookStatus != "" {
			book.BookStatus = body.BookStatus
		}
		return tx.Save(&book).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Book not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update book")
	}

	return helper.Success(c, "Book details updated successfully", book)
}

// Search is the catalog search: search_term plus search_type (title|author).
func (ctrl *BookController) Search(c *fiber.Ctx) error {
	term := strings.ToLower(strings.TrimSpace(c.Query("search_term")))
	searchType := c.Query("search_type", "title")
	if term == "" {
		return helper.Success(c, "OK", fiber.Map{"results": []dto.BookWithAuthorResponse{}})
	}

	like := "%" + term + "%"
	tx := ctrl.DB.WithContext(c.Context()).
		Table("books").
		Select("books.book_id, books.book_title, authors.author_name, books.book_isbn, books.book_genre, books.book_status").
		Joins("LEFT JOIN authors ON authors.author_id = books.book_author_id")

	switch searchType {
	case "author":
		tx = tx.Where("LOWER(authors.author_name) LIKE ?", like)
	case "title":
		tx = tx.Where("LOWER(books.book_title) LIKE ?", like)
	default:
		return helper.Error(c, fiber.StatusBadRequest, "search_type must be title or author")
	}

	var rows []dto.BookWithAuthorResponse
	if err := tx.Order("books.book_title asc").Limit(50).Scan(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Search failed")
	}
	return helper.Success(c, "OK", fiber.Map{"results": rows})
}

var errDuplicateISBN = errors.New("duplicate isbn")

// getOrCreateAuthor resolves an author by case-insensitive name, creating
// the record on first mention.
func getOrCreateAuthor(tx *gorm.DB, name string) (*authorModel.AuthorModel, error) {
	name = strings.TrimSpace(name)
	var author authorModel.AuthorModel
	err := tx.Where("LOWER(author_name) = LOWER(?)", name).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	author = authorModel.AuthorModel{AuthorName: name}
	if err := tx.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}
