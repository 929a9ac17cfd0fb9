package services

import (
	"context"
	"testing"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReviewService(db *gorm.DB) *ReviewService {
	return NewReviewService(db, repositories.NewReviewRepository(db), repositories.NewBookRepository(db))
}

func TestReviewService_Create(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newReviewService(db)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	review, err := svc.Create(context.Background(), CreateReviewInput{
		BookID: book.ID,
		UserID: member.ID,
		Rating: 5,
		Text:   "Great read",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, review.ID) // server generated a key
	assert.Equal(t, 5, review.Rating)

	// Popularity accumulates the rating value
	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 5, got.PopularityScore)
}

func TestReviewService_DuplicateKeyCountsOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newReviewService(db)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	input := CreateReviewInput{
		Key:    "3f1e9c2a-0000-4000-8000-000000000001",
		BookID: book.ID,
		UserID: member.ID,
		Rating: 4,
		Text:   "Solid",
	}

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	// Retried delivery of the same submission
	_, err = svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)

	// Popularity bumped exactly once, by the rating value
	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 4, got.PopularityScore)

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("book_id = ?", book.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReviewService_RatingBounds(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newReviewService(db)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookID: book.ID,
			UserID: member.ID,
			Rating: rating,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}

	// Bounds are inclusive
	for _, rating := range []int{1, 5} {
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookID: book.ID,
			UserID: member.ID,
			Rating: rating,
		})
		assert.NoError(t, err)
	}
}

func TestReviewService_BookNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newReviewService(db)
	member := createUser(t, db, "member", "member")

	_, err := svc.Create(context.Background(), CreateReviewInput{
		BookID: 999,
		UserID: member.ID,
		Rating: 3,
	})
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestReviewService_ListByBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newReviewService(db)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateReviewInput{
			BookID: book.ID,
			UserID: member.ID,
			Rating: 4,
		})
		require.NoError(t, err)
	}

	reviews, total, err := svc.ListByBook(context.Background(), book.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, reviews, 2)
}
