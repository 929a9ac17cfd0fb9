package services

import (
	"context"
	"errors"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewService handles book reviews. Each review carries a uuid key; the
// insert and the popularity increment share one transaction, so retried
// submissions of the same key bump the book's popularity exactly once.
// The score accumulates the rating values rather than being recomputed.
type ReviewService struct {
	db         *gorm.DB
	reviewRepo *repositories.ReviewRepository
	bookRepo   *repositories.BookRepository
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, reviewRepo *repositories.ReviewRepository, bookRepo *repositories.BookRepository) *ReviewService {
	return &ReviewService{
		db:         db,
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

// CreateReviewInput carries a review submission. Key is optional: clients
// that retry should send the same key; when empty the server generates one
// and the submission is treated as first delivery.
type CreateReviewInput struct {
	Key    string
	BookID uint
	UserID uint
	Rating int
	Text   string
}

// Create records a review and bumps the book's popularity score.
// A duplicate key returns ErrDuplicateReview and changes nothing.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	key := input.Key
	if key == "" {
		key = uuid.New().String()
	}

	review := &models.Review{
		ID:     key,
		BookID: input.BookID,
		UserID: input.UserID,
		Rating: input.Rating,
		Text:   input.Text,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Review{}).Where("id = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateReview
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		return tx.Model(&models.Book{}).
			Where("id = ?", input.BookID).
			UpdateColumn("popularity_score", gorm.Expr("popularity_score + ?", input.Rating)).Error
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ListByBook lists a book's reviews with pagination
func (s *ReviewService) ListByBook(ctx context.Context, bookID uint, offset, limit int) ([]*models.Review, int64, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, domain.ErrBookNotFound
		}
		return nil, 0, err
	}
	return s.reviewRepo.ListByBook(ctx, bookID, offset, limit)
}
