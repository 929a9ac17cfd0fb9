package services

import (
	"context"
	"testing"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSweepService(db *gorm.DB, reminderDays int) *SweepService {
	return NewSweepService(db, repositories.NewLoanRepository(db), nil, reminderDays)
}

func createApprovedLoan(t *testing.T, db *gorm.DB, bookID, userID uint, due time.Time) *models.Loan {
	approvedAt := due.AddDate(0, 0, -14)
	loan := &models.Loan{
		BookID:     bookID,
		UserID:     userID,
		Status:     "approved",
		ApprovedAt: &approvedAt,
		DueDate:    &due,
	}
	require.NoError(t, db.Create(loan).Error)
	return loan
}

func TestSweepService_MarksPastDueOverdue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 3)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	loan := createApprovedLoan(t, db, book.ID, member.ID, time.Now().Add(-24*time.Hour))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.MarkedOverdue)

	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.Equal(t, "overdue", got.Status)
}

func TestSweepService_SecondRunIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 3)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	createApprovedLoan(t, db, book.ID, member.ID, time.Now().Add(-24*time.Hour))

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedOverdue)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedOverdue)
	assert.Equal(t, 0, second.RemindersSent)
}

func TestSweepService_LeavesFutureLoansAlone(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 3)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	loan := createApprovedLoan(t, db, book.ID, member.ID, time.Now().AddDate(0, 0, 10))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.MarkedOverdue)

	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.Equal(t, "approved", got.Status)
}

func TestSweepService_SendsReminderOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 3)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	loan := createApprovedLoan(t, db, book.ID, member.ID, time.Now().Add(48*time.Hour))

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemindersSent)

	var got models.Loan
	require.NoError(t, db.First(&got, loan.ID).Error)
	assert.NotNil(t, got.ReminderSentAt)

	// The reminder claim is one-shot
	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.RemindersSent)
}

func TestSweepService_NoReminderOutsideWindow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 3)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	createApprovedLoan(t, db, book.ID, member.ID, time.Now().AddDate(0, 0, 10))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
}

func TestSweepService_ZeroWindowDisablesReminders(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	svc := newSweepService(db, 0)
	member := createUser(t, db, "member", "member")
	book := createBook(t, db, "Dune", 2, 1)
	createApprovedLoan(t, db, book.ID, member.ID, time.Now().Add(24*time.Hour))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersSent)
}
