package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"gorm.io/gorm"
)

// retryBackoff is the base delay between conflicting transaction attempts.
// Attempt n waits n * retryBackoff before re-reading.
const retryBackoff = 50 * time.Millisecond

// LoanService coordinates the loan lifecycle. Every decision runs inside a
// single database transaction with conditional writes, so two admins racing
// on the same loan (or the last copy of a book) can never double-decrement
// stock or double-apply a transition.
type LoanService struct {
	db         *gorm.DB
	loanRepo   *repositories.LoanRepository
	bookRepo   *repositories.BookRepository
	userRepo   repositories.UserRepository
	machine    *domain.LoanStateMachine
	notifier   *NotificationService
	maxRetries int
	maxActive  int
}

// NewLoanService creates a new loan service
func NewLoanService(
	db *gorm.DB,
	loanRepo *repositories.LoanRepository,
	bookRepo *repositories.BookRepository,
	userRepo repositories.UserRepository,
	machine *domain.LoanStateMachine,
	notifier *NotificationService,
	maxRetries int,
	maxActive int,
) *LoanService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &LoanService{
		db:         db,
		loanRepo:   loanRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		machine:    machine,
		notifier:   notifier,
		maxRetries: maxRetries,
		maxActive:  maxActive,
	}
}

// CreateRequest places a loan request for a book. Stock is NOT checked
// here: a request only expresses interest, availability is decided at
// approval time. The request is rejected up front only when the book does
// not exist or the member is inactive.
func (s *LoanService) CreateRequest(ctx context.Context, bookID, userID uint) (*models.Loan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	if s.maxActive > 0 {
		active, err := s.loanRepo.CountActiveByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if active >= int64(s.maxActive) {
			return nil, domain.ErrInvalidState
		}
	}

	loan := &models.Loan{
		BookID: bookID,
		UserID: userID,
		Status: string(domain.StatusRequested),
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	return s.loanRepo.GetByID(ctx, loan.ID)
}

// Process applies an admin decision (approve, reject, return) to a loan.
// The decision is retried a bounded number of times when a concurrent
// transaction wins the conditional write; each retry re-reads current
// state, so an admin who lost the race against an identical decision gets
// ErrInvalidState rather than a spurious success.
func (s *LoanService) Process(ctx context.Context, loanID uint, action domain.LoanAction, actorID uint) (*models.Loan, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPermissionDenied
		}
		return nil, err
	}
	if actor.Role != string(domain.RoleAdmin) {
		return nil, domain.ErrPermissionDenied
	}

	if !domain.ValidAction(action) {
		return nil, domain.ErrInvalidState
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		err := s.processOnce(ctx, loanID, action)
		if err == nil {
			loan, readErr := s.loanRepo.GetByID(ctx, loanID)
			if readErr != nil {
				return nil, readErr
			}
			s.dispatchNotification(loan, action)
			return loan, nil
		}

		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}

		lastErr = err
		log.Printf("⚠️ Loan %d: conflicting %s, retrying (attempt %d/%d)", loanID, action, attempt+1, s.maxRetries)
	}

	return nil, lastErr
}

// processOnce runs one atomic attempt: read fresh state, validate the
// transition, then apply loan status and stock changes with conditional
// writes. A conditional write touching zero rows means somebody else got
// there first; the whole transaction rolls back with ErrConflict.
func (s *LoanService) processOnce(ctx context.Context, loanID uint, action domain.LoanAction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		var book models.Book
		if err := tx.First(&book, loan.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return err
		}

		transition, err := s.machine.Next(domain.LoanStatus(loan.Status), action)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status": string(transition.To),
		}
		switch transition.To {
		case domain.StatusApproved:
			due := s.machine.DueDate(now)
			updates["approved_at"] = now
			updates["due_date"] = due
		case domain.StatusRejected:
			updates["processed_at"] = now
		case domain.StatusReturned:
			updates["returned_at"] = now
		}

		// Guard on the status we just read: if another transaction moved
		// the loan in between, zero rows change and we bail out.
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loan.ID, string(transition.From)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}

		switch {
		case transition.StockDelta < 0:
			return s.reserveCopy(tx, &book)
		case transition.StockDelta > 0:
			return s.releaseCopy(tx, &book)
		}
		return nil
	})
}

// reserveCopy takes one copy for an approved loan. The snapshot check
// gives the clean ErrOutOfStock answer; the conditional decrement makes it
// impossible to go below zero even when the snapshot is already stale.
func (s *LoanService) reserveCopy(tx *gorm.DB, book *models.Book) error {
	stock := domain.Stock{Total: book.TotalStock, Available: book.AvailableStock}
	if _, err := stock.Reserve(); err != nil {
		return err
	}

	res := tx.Model(&models.Book{}).
		Where("id = ? AND available_stock > 0", book.ID).
		UpdateColumn("available_stock", gorm.Expr("available_stock - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOutOfStock
	}
	return nil
}

// releaseCopy returns one copy to the shelf. Release never fails the
// return: if the counters already read full (a lost reserve somewhere,
// or an admin shrank the total while the copy was out), we keep the
// invariant by clamping and log the anomaly instead.
func (s *LoanService) releaseCopy(tx *gorm.DB, book *models.Book) error {
	res := tx.Model(&models.Book{}).
		Where("id = ? AND available_stock < total_stock", book.ID).
		UpdateColumn("available_stock", gorm.Expr("available_stock + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("⚠️ Book %d: release skipped, available stock already at total (%d)", book.ID, book.TotalStock)
	}
	return nil
}

// dispatchNotification fires the matching email without blocking or
// failing the request
func (s *LoanService) dispatchNotification(loan *models.Loan, action domain.LoanAction) {
	if s.notifier == nil {
		return
	}
	switch action {
	case domain.ActionApprove:
		go s.notifier.NotifyLoanApproved(loan)
	case domain.ActionReject:
		go s.notifier.NotifyLoanRejected(loan)
	case domain.ActionReturn:
		go s.notifier.NotifyLoanReturned(loan)
	}
}

// GetLoan returns a loan by ID. Members may only see their own loans;
// admins see everything.
func (s *LoanService) GetLoan(ctx context.Context, loanID, actorID uint, actorRole string) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	if actorRole != string(domain.RoleAdmin) && loan.UserID != actorID {
		return nil, domain.ErrPermissionDenied
	}

	return loan, nil
}

// ListUserLoans lists a member's own loans
func (s *LoanService) ListUserLoans(ctx context.Context, userID uint) ([]*models.Loan, error) {
	return s.loanRepo.ListByUser(ctx, userID)
}

// ListLoans lists all loans with optional status filter (admin view)
func (s *LoanService) ListLoans(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	if status != "" && !domain.ValidStatus(domain.LoanStatus(status)) {
		return nil, 0, domain.ErrInvalidState
	}
	return s.loanRepo.List(ctx, status, offset, limit)
}
