package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dbPath := "./test_loans_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = models.AutoMigrate(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func newLoanService(db *gorm.DB, dueDays int) *LoanService {
	return NewLoanService(
		db,
		repositories.NewLoanRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewUserRepository(db),
		domain.NewLoanStateMachine(dueDays),
		nil, // no notifier in tests
		3,
		0,
	)
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	user := &models.User{
		DisplayName: username,
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed",
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBook(t *testing.T, db *gorm.DB, title string, total, available int) *models.Book {
	book := &models.Book{
		Title:          title,
		Author:         "Author",
		TotalStock:     total,
		AvailableStock: available,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestLoanService_CreateRequest(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)

	require.NoError(t, err)
	assert.Equal(t, "requested", loan.Status)
	assert.NotZero(t, loan.RequestAt)
	assert.Nil(t, loan.DueDate)

	// Requesting does not touch stock
	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 2, got.AvailableStock)
}

func TestLoanService_CreateRequest_NoStockStillAllowed(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 1, 0)

	// Availability is decided at approval time, not request time
	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)

	require.NoError(t, err)
	assert.Equal(t, "requested", loan.Status)
}

func TestLoanService_CreateRequest_BookNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	member := createUser(t, db, "member", "member")

	_, err := svc.CreateRequest(context.Background(), 999, member.ID)

	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestLoanService_CreateRequest_InactiveUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	member := createUser(t, db, "member", "member")
	require.NoError(t, db.Model(member).Update("is_active", false).Error)
	book := createBook(t, db, "Dune", 1, 1)

	_, err := svc.CreateRequest(context.Background(), book.ID, member.ID)

	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestLoanService_Approve(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	before := time.Now()
	processed, err := svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "approved", processed.Status)
	require.NotNil(t, processed.ApprovedAt)
	require.NotNil(t, processed.DueDate)

	// Due date is approval time plus the configured loan period
	expectedDue := processed.ApprovedAt.Add(14 * 24 * time.Hour)
	assert.WithinDuration(t, expectedDue, *processed.DueDate, time.Second)
	assert.True(t, processed.ApprovedAt.After(before.Add(-time.Second)))

	// Exactly one copy reserved
	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 1, got.AvailableStock)
}

func TestLoanService_ApproveTwice(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	// Second identical decision fails; stock is decremented only once
	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 1, got.AvailableStock)
}

func TestLoanService_ApproveOutOfStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 1, 0)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	// The whole decision rolled back: loan is still requested
	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.Equal(t, "requested", got.Status)
}

func TestLoanService_LastCopyGoesToOneLoan(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	alice := createUser(t, db, "alice", "member")
	bob := createUser(t, db, "bob", "member")
	book := createBook(t, db, "Dune", 1, 1)

	loan1, err := svc.CreateRequest(context.Background(), book.ID, alice.ID)
	require.NoError(t, err)
	loan2, err := svc.CreateRequest(context.Background(), book.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), loan1.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	// The second request cannot take a copy that no longer exists
	_, err = svc.Process(context.Background(), loan2.ID, domain.ActionApprove, admin.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 0, got.AvailableStock)
}

func TestLoanService_Reject(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	processed, err := svc.Process(context.Background(), loan.ID, domain.ActionReject, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "rejected", processed.Status)
	assert.NotNil(t, processed.ProcessedAt)
	assert.Nil(t, processed.DueDate)

	// Rejection never touches stock
	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 2, got.AvailableStock)
}

func TestLoanService_Return(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	processed, err := svc.Process(context.Background(), loan.ID, domain.ActionReturn, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "returned", processed.Status)
	assert.NotNil(t, processed.ReturnedAt)

	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 2, got.AvailableStock)
}

func TestLoanService_ReturnOverdueLoan(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 1, 1)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	// Simulate the sweep having marked the loan overdue
	require.NoError(t, db.Model(&models.Loan{}).Where("id = ?", loan.ID).Update("status", "overdue").Error)

	processed, err := svc.Process(context.Background(), loan.ID, domain.ActionReturn, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, "returned", processed.Status)

	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 1, got.AvailableStock)
}

func TestLoanService_ReturnClampsStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 2)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, admin.ID)
	require.NoError(t, err)

	// Admin shrank the total while the copy was out
	require.NoError(t, db.Model(&models.Book{}).Where("id = ?", book.ID).
		Updates(map[string]interface{}{"total_stock": 1, "available_stock": 1}).Error)

	// Return still succeeds; the counter clamps instead of overflowing
	processed, err := svc.Process(context.Background(), loan.ID, domain.ActionReturn, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "returned", processed.Status)

	var got models.Book
	require.NoError(t, db.First(&got, book.ID).Error)
	assert.Equal(t, 1, got.AvailableStock)
	assert.Equal(t, 1, got.TotalStock)
}

func TestLoanService_ProcessRequiresAdmin(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 1, 1)

	loan, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), loan.ID, domain.ActionApprove, member.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.Equal(t, "requested", got.Status)
}

func TestLoanService_ProcessLoanNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	admin := createUser(t, db, "admin", "admin")

	_, err := svc.Process(context.Background(), 999, domain.ActionApprove, admin.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanService_MaxActiveLimit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewLoanService(
		db,
		repositories.NewLoanRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewUserRepository(db),
		domain.NewLoanStateMachine(14),
		nil,
		3,
		1, // one active loan per member
	)

	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 3, 3)

	_, err := svc.CreateRequest(context.Background(), book.ID, member.ID)
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), book.ID, member.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestLoanService_GetLoanOwnership(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newLoanService(db, 14)
	alice := createUser(t, db, "alice", "member")
	bob := createUser(t, db, "bob", "member")
	admin := createUser(t, db, "admin", "admin")
	book := createBook(t, db, "Dune", 1, 1)

	loan, err := svc.CreateRequest(context.Background(), book.ID, alice.ID)
	require.NoError(t, err)

	// Owner can see it
	_, err = svc.GetLoan(context.Background(), loan.ID, alice.ID, "member")
	assert.NoError(t, err)

	// Another member cannot
	_, err = svc.GetLoan(context.Background(), loan.ID, bob.ID, "member")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// Admin can
	_, err = svc.GetLoan(context.Background(), loan.ID, admin.ID, "admin")
	assert.NoError(t, err)
}
