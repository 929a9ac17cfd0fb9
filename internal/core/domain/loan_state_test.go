package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanStateMachine_Approve(t *testing.T) {
	m := NewLoanStateMachine(14)

	tr, err := m.Next(StatusRequested, ActionApprove)

	require.NoError(t, err)
	assert.Equal(t, StatusRequested, tr.From)
	assert.Equal(t, StatusApproved, tr.To)
	assert.Equal(t, -1, tr.StockDelta)
}

func TestLoanStateMachine_Reject(t *testing.T) {
	m := NewLoanStateMachine(14)

	tr, err := m.Next(StatusRequested, ActionReject)

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, tr.To)
	assert.Equal(t, 0, tr.StockDelta)
}

func TestLoanStateMachine_ReturnFromApproved(t *testing.T) {
	m := NewLoanStateMachine(14)

	tr, err := m.Next(StatusApproved, ActionReturn)

	require.NoError(t, err)
	assert.Equal(t, StatusReturned, tr.To)
	assert.Equal(t, 1, tr.StockDelta)
}

func TestLoanStateMachine_ReturnFromOverdue(t *testing.T) {
	m := NewLoanStateMachine(14)

	tr, err := m.Next(StatusOverdue, ActionReturn)

	require.NoError(t, err)
	assert.Equal(t, StatusReturned, tr.To)
	assert.Equal(t, 1, tr.StockDelta)
}

func TestLoanStateMachine_InvalidTransitions(t *testing.T) {
	m := NewLoanStateMachine(14)

	cases := []struct {
		name   string
		status LoanStatus
		action LoanAction
	}{
		{"approve twice", StatusApproved, ActionApprove},
		{"approve returned", StatusReturned, ActionApprove},
		{"approve rejected", StatusRejected, ActionApprove},
		{"approve overdue", StatusOverdue, ActionApprove},
		{"reject approved", StatusApproved, ActionReject},
		{"reject overdue", StatusOverdue, ActionReject},
		{"return requested", StatusRequested, ActionReturn},
		{"return returned", StatusReturned, ActionReturn},
		{"return rejected", StatusRejected, ActionReturn},
		{"unknown action", StatusRequested, LoanAction("destroy")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Next(tc.status, tc.action)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestLoanStateMachine_DueDate(t *testing.T) {
	m := NewLoanStateMachine(14)
	approvedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	due := m.DueDate(approvedAt)

	assert.Equal(t, approvedAt.AddDate(0, 0, 14), due)
}

func TestLoanStateMachine_DueDateConfigurable(t *testing.T) {
	m := NewLoanStateMachine(7)
	approvedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	due := m.DueDate(approvedAt)

	assert.Equal(t, approvedAt.AddDate(0, 0, 7), due)
}

func TestCanMarkOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, CanMarkOverdue(StatusApproved, &past, now))
	assert.False(t, CanMarkOverdue(StatusApproved, &future, now))
	assert.False(t, CanMarkOverdue(StatusApproved, nil, now))
	assert.False(t, CanMarkOverdue(StatusOverdue, &past, now))
	assert.False(t, CanMarkOverdue(StatusRequested, &past, now))
	assert.False(t, CanMarkOverdue(StatusReturned, &past, now))
}

func TestLoanStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusReturned.IsTerminal())
	assert.False(t, StatusRequested.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.False(t, StatusOverdue.IsTerminal())
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionApprove))
	assert.True(t, ValidAction(ActionReject))
	assert.True(t, ValidAction(ActionReturn))
	assert.False(t, ValidAction(LoanAction("renew")))
}
