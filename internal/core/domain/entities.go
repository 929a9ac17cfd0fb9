package domain

// Role represents user role in the system
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	StatusRequested LoanStatus = "requested"
	StatusApproved  LoanStatus = "approved"
	StatusRejected  LoanStatus = "rejected"
	StatusReturned  LoanStatus = "returned"
	StatusOverdue   LoanStatus = "overdue"
)

// ValidStatus reports whether s is a known loan status.
func ValidStatus(s LoanStatus) bool {
	switch s {
	case StatusRequested, StatusApproved, StatusRejected, StatusReturned, StatusOverdue:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusReturned
}

// LoanAction is an admin-initiated operation on a loan
type LoanAction string

const (
	ActionApprove LoanAction = "approve"
	ActionReject  LoanAction = "reject"
	ActionReturn  LoanAction = "return"
)

// ValidAction reports whether the action is one the system accepts.
func ValidAction(a LoanAction) bool {
	switch a {
	case ActionApprove, ActionReject, ActionReturn:
		return true
	}
	return false
}
