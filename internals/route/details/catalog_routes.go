package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bookController "bookworm_backend/internals/features/catalog/books/controller"
)

// CatalogLibrarianRoutes mounts book management on the librarian group.
func CatalogLibrarianRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := bookController.NewBookController(db)

	r.Post("/books", ctrl.Create)
	r.Get("/books", ctrl.List)
	r.Get("/books/:id", ctrl.Detail)
	r.Put("/books/:id", ctrl.Update)
}

// CatalogUserRoutes mounts the catalog search available to every member.
func CatalogUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := bookController.NewBookController(db)

	r.Get("/search", ctrl.Search)
}
