package repositories

import (
	"context"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ReviewRepository handles review data access
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// GetByID gets a review by its idempotency key
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByBook lists a book's reviews with pagination, newest first
func (r *ReviewRepository) ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*models.Review, int64, error) {
	var reviews []*models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("book_id = ?", bookID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error

	return reviews, total, err
}
