package repositories

import (
	"context"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// LoanRepository handles loan data access. Status and book stock writes go
// through the loan service's transaction, not through this repository.
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID with relations
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListByUser lists a member's loans, newest request first
func (r *LoanRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("request_at DESC").
		Find(&loans).Error
	return loans, err
}

// List lists loans with pagination and optional status filter
func (r *LoanRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Loan{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Preload("Book").
		Preload("User").
		Order("request_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListPastDue lists approved loans whose due date has passed
func (r *LoanRepository) ListPastDue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("status = ? AND due_date < ?", "approved", now).
		Find(&loans).Error
	return loans, err
}

// ListDueSoon lists approved loans due within the window that have not yet
// been reminded
func (r *LoanRepository) ListDueSoon(ctx context.Context, now, until time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("status = ? AND due_date >= ? AND due_date <= ? AND reminder_sent_at IS NULL", "approved", now, until).
		Find(&loans).Error
	return loans, err
}

// CountActiveByUser counts a member's loans that still hold or request a copy
func (r *LoanRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND status IN ?", userID, []string{"requested", "approved", "overdue"}).
		Count(&count).Error
	return count, err
}
