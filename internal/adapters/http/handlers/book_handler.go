package handlers

import (
	"errors"
	"strconv"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/services"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/pagination"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	catalogService *services.CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalogService *services.CatalogService) *BookHandler {
	return &BookHandler{catalogService: catalogService}
}

// List handles GET /books
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.ListFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	books, total, err := h.catalogService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// Get handles GET /books/:id
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.catalogService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", book)
}

// Categories handles GET /books/categories
func (h *BookHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.catalogService.Categories(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}

	return response.Success(c, "Categories retrieved successfully", categories)
}

// Create handles POST /books (admin)
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if input.Author == "" {
		return response.BadRequest(c, "Author is required")
	}
	if input.TotalStock < 0 {
		return response.BadRequest(c, "Total stock cannot be negative")
	}

	book, err := h.catalogService.Create(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", book)
}

// Update handles PUT /books/:id (admin)
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if input.TotalStock < 0 {
		return response.BadRequest(c, "Total stock cannot be negative")
	}

	book, err := h.catalogService.Update(c.Context(), uint(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", book)
}

// Delete handles DELETE /books/:id (admin)
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.catalogService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
