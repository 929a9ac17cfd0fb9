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

func newCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(db, repositories.NewBookRepository(db), repositories.NewUserRepository(db), nil)
}

func TestCatalogService_CreateStartsFullyAvailable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newCatalogService(db)

	book, err := svc.Create(context.Background(), BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		TotalStock: 4,
	})

	require.NoError(t, err)
	assert.Equal(t, 4, book.TotalStock)
	assert.Equal(t, 4, book.AvailableStock)
}

func TestCatalogService_UpdateGrowsStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newCatalogService(db)
	book := createBook(t, db, "Dune", 5, 2) // 3 copies out on loan

	updated, err := svc.Update(context.Background(), book.ID, BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		TotalStock: 8,
	})

	require.NoError(t, err)
	assert.Equal(t, 8, updated.TotalStock)
	assert.Equal(t, 5, updated.AvailableStock) // same 3 still out
}

func TestCatalogService_UpdateShrinksStockAndClamps(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newCatalogService(db)
	book := createBook(t, db, "Dune", 5, 2)

	// Shrinking below the loaned-out count clamps available at zero
	updated, err := svc.Update(context.Background(), book.ID, BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		TotalStock: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalStock)
	assert.Equal(t, 0, updated.AvailableStock)
}

func TestCatalogService_UpdateNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newCatalogService(db)

	_, err := svc.Update(context.Background(), 999, BookInput{Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestCatalogService_DeleteKeepsLoanHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newCatalogService(db)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 1, 1)

	loan := &models.Loan{BookID: book.ID, UserID: member.ID, Status: "returned"}
	require.NoError(t, db.Create(loan).Error)

	require.NoError(t, svc.Delete(context.Background(), book.ID))

	// Book is gone from the catalog
	_, err := svc.GetByID(context.Background(), book.ID)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	// Loan row survives
	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.Equal(t, "returned", got.Status)
}
