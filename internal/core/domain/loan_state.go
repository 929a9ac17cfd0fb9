package domain

import "time"

// Transition describes one validated state change and the side effects the
// coordinator must apply atomically with it. StockDelta of -1 means one copy
// is reserved, +1 means one copy is released, 0 means stock is untouched.
type Transition struct {
	From       LoanStatus
	To         LoanStatus
	StockDelta int
}

// LoanStateMachine validates loan lifecycle transitions:
//
//	requested → approved → returned
//	requested → rejected            (terminal)
//	approved  → overdue             (sweep only, see CanMarkOverdue)
//	overdue   → returned
//
// The machine itself is pure; all persistence and stock arithmetic belongs
// to the coordinator.
type LoanStateMachine struct {
	duePeriod time.Duration
}

// NewLoanStateMachine creates a state machine with the given loan period
// in days. The canonical default is 14; it is a configuration value,
// not a constant.
func NewLoanStateMachine(dueDays int) *LoanStateMachine {
	return &LoanStateMachine{duePeriod: time.Duration(dueDays) * 24 * time.Hour}
}

// Next validates action against the current status and returns the
// resulting transition. ErrInvalidState is returned when the action has no
// edge from the current status.
func (m *LoanStateMachine) Next(current LoanStatus, action LoanAction) (Transition, error) {
	switch action {
	case ActionApprove:
		if current != StatusRequested {
			return Transition{}, ErrInvalidState
		}
		return Transition{From: current, To: StatusApproved, StockDelta: -1}, nil
	case ActionReject:
		if current != StatusRequested {
			return Transition{}, ErrInvalidState
		}
		return Transition{From: current, To: StatusRejected}, nil
	case ActionReturn:
		if current != StatusApproved && current != StatusOverdue {
			return Transition{}, ErrInvalidState
		}
		return Transition{From: current, To: StatusReturned, StockDelta: 1}, nil
	}
	return Transition{}, ErrInvalidState
}

// DueDate computes the due date for a loan approved at the given time.
func (m *LoanStateMachine) DueDate(approvedAt time.Time) time.Time {
	return approvedAt.Add(m.duePeriod)
}

// CanMarkOverdue reports whether the sweep may move a loan to overdue.
// Only approved loans with a due date in the past qualify; calling the
// sweep again on an already-overdue loan is a no-op by this check.
func CanMarkOverdue(status LoanStatus, dueDate *time.Time, now time.Time) bool {
	return status == StatusApproved && dueDate != nil && dueDate.Before(now)
}
