package repositories

import (
	"context"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// BookRepository handles book data access
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListFilter narrows a catalog listing. Query matches title or author by
// substring; there is no ranking.
type ListFilter struct {
	Category string
	Query    string
}

// List lists books with pagination and optional filter
func (r *BookRepository) List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Book{})
	if filter != nil {
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.Query != "" {
			like := "%" + filter.Query + "%"
			q = q.Where("title LIKE ? OR author LIKE ?", like, like)
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("title").Offset(offset).Limit(limit).Find(&books).Error
	return books, total, err
}

// Categories returns the distinct categories in the catalog
func (r *BookRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// Update updates a book
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete soft deletes a book
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}
