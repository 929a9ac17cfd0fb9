package services

import (
	"context"
	"errors"
	"log"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"gorm.io/gorm"
)

// CatalogService handles the book catalog
type CatalogService struct {
	db       *gorm.DB
	bookRepo *repositories.BookRepository
	userRepo repositories.UserRepository
	notifier *NotificationService
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB, bookRepo *repositories.BookRepository, userRepo repositories.UserRepository, notifier *NotificationService) *CatalogService {
	return &CatalogService{
		db:       db,
		bookRepo: bookRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// BookInput carries admin-supplied book fields
type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	TotalStock  int    `json:"total_stock"`
}

// Create adds a book to the catalog. A new book starts fully available,
// and subscribed members are told about the arrival.
func (s *CatalogService) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	if input.TotalStock < 0 {
		input.TotalStock = 0
	}

	book := &models.Book{
		Title:          input.Title,
		Author:         input.Author,
		ISBN:           input.ISBN,
		Category:       input.Category,
		Description:    input.Description,
		CoverURL:       input.CoverURL,
		TotalStock:     input.TotalStock,
		AvailableStock: input.TotalStock,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	if s.notifier != nil && s.notifier.IsEnabled() {
		go s.announceNewBook(book)
	}

	return book, nil
}

// announceNewBook emails all subscribed members about a new arrival
func (s *CatalogService) announceNewBook(book *models.Book) {
	subscribers, err := s.userRepo.ListSubscribed(context.Background())
	if err != nil {
		log.Printf("⚠️ New-book announcement skipped: %v", err)
		return
	}
	s.notifier.NotifyNewBook(book, subscribers)
}

// Update edits a book's fields. Changing total stock shifts available
// stock by the same amount inside one transaction: copies out on loan stay
// out, and the counters are clamped so they can never go negative or
// exceed the new total.
func (s *CatalogService) Update(ctx context.Context, id uint, input BookInput) (*models.Book, error) {
	var updated *models.Book

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return err
		}

		book.Title = input.Title
		book.Author = input.Author
		book.ISBN = input.ISBN
		book.Category = input.Category
		book.Description = input.Description
		book.CoverURL = input.CoverURL

		if input.TotalStock != book.TotalStock {
			stock := domain.Stock{Total: book.TotalStock, Available: book.AvailableStock}
			stock = stock.Resize(input.TotalStock)
			book.TotalStock = stock.Total
			book.AvailableStock = stock.Available
		}

		if err := tx.Save(&book).Error; err != nil {
			return err
		}

		updated = &book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetByID returns a single book
func (s *CatalogService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// List lists books with pagination and optional filter
func (s *CatalogService) List(ctx context.Context, filter *repositories.ListFilter, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, filter, offset, limit)
}

// Categories lists the catalog's distinct categories
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.bookRepo.Categories(ctx)
}

// Delete removes a book from the catalog. Loan history keeps its rows;
// the soft delete only hides the book from listings.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBookNotFound
		}
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}
