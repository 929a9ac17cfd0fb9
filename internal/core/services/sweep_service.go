package services

import (
	"context"
	"log"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"

	"gorm.io/gorm"
)

// SweepResult reports what one sweep run did
type SweepResult struct {
	MarkedOverdue int `json:"marked_overdue"`
	RemindersSent int `json:"reminders_sent"`
}

// SweepService runs the periodic loan maintenance pass: past-due approved
// loans become overdue, and loans approaching their due date get one
// reminder email. Both steps use conditional writes, so running the sweep
// twice (cron firing plus a manual trigger) marks and reminds each loan
// exactly once.
type SweepService struct {
	db             *gorm.DB
	loanRepo       *repositories.LoanRepository
	notifier       *NotificationService
	reminderWindow time.Duration
}

// NewSweepService creates a new sweep service
func NewSweepService(db *gorm.DB, loanRepo *repositories.LoanRepository, notifier *NotificationService, reminderWindowDays int) *SweepService {
	if reminderWindowDays < 0 {
		reminderWindowDays = 0
	}
	return &SweepService{
		db:             db,
		loanRepo:       loanRepo,
		notifier:       notifier,
		reminderWindow: time.Duration(reminderWindowDays) * 24 * time.Hour,
	}
}

// Run executes one sweep pass and returns counts. Individual loan failures
// are logged and skipped; one bad row never aborts the rest of the sweep.
func (s *SweepService) Run(ctx context.Context) (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{}

	marked, err := s.markOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	result.MarkedOverdue = marked

	reminded, err := s.sendReminders(ctx, now)
	if err != nil {
		return nil, err
	}
	result.RemindersSent = reminded

	if result.MarkedOverdue > 0 || result.RemindersSent > 0 {
		log.Printf("🧹 Sweep done: %d marked overdue, %d reminders sent", result.MarkedOverdue, result.RemindersSent)
	}

	return result, nil
}

// markOverdue moves past-due approved loans to overdue. The status guard
// in the update makes the step idempotent and safe against a racing
// return: a loan returned between the read and the write simply doesn't
// match anymore.
func (s *SweepService) markOverdue(ctx context.Context, now time.Time) (int, error) {
	loans, err := s.loanRepo.ListPastDue(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, loan := range loans {
		if !domain.CanMarkOverdue(domain.LoanStatus(loan.Status), loan.DueDate, now) {
			continue
		}

		res := s.db.WithContext(ctx).Model(&models.Loan{}).
			Where("id = ? AND status = ?", loan.ID, string(domain.StatusApproved)).
			Update("status", string(domain.StatusOverdue))
		if res.Error != nil {
			log.Printf("⚠️ Sweep: failed to mark loan %d overdue: %v", loan.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue // returned or already marked meanwhile
		}

		marked++
		if s.notifier != nil {
			go s.notifier.NotifyOverdue(loan)
		}
	}

	return marked, nil
}

// sendReminders emails members whose due date falls within the reminder
// window. Claiming the row by setting reminder_sent_at where it is still
// NULL guarantees at most one reminder per loan, even with overlapping
// sweep runs.
func (s *SweepService) sendReminders(ctx context.Context, now time.Time) (int, error) {
	if s.reminderWindow == 0 {
		return 0, nil
	}

	loans, err := s.loanRepo.ListDueSoon(ctx, now, now.Add(s.reminderWindow))
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, loan := range loans {
		res := s.db.WithContext(ctx).Model(&models.Loan{}).
			Where("id = ? AND reminder_sent_at IS NULL", loan.ID).
			Update("reminder_sent_at", now)
		if res.Error != nil {
			log.Printf("⚠️ Sweep: failed to claim reminder for loan %d: %v", loan.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue // another run claimed it
		}

		reminded++
		if s.notifier != nil {
			go s.notifier.NotifyDueReminder(loan)
		}
	}

	return reminded, nil
}
