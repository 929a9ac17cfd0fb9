package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregations
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Catalog statistics
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`

	// Member statistics
	TotalMembers  int64 `json:"total_members"`
	ActiveMembers int64 `json:"active_members"`

	// Loan statistics
	PendingRequests int64 `json:"pending_requests"`
	ActiveLoans     int64 `json:"active_loans"`
	OverdueLoans    int64 `json:"overdue_loans"`
	ReturnedLoans   int64 `json:"returned_loans"`

	// Monthly statistics
	LoansThisMonth int64 `json:"loans_this_month"`

	// Breakdowns
	PopularBooks  []PopularBook  `json:"popular_books"`
	LoansPerMonth []MonthlyLoans `json:"loans_per_month"`
}

// PopularBook represents a catalog entry ranked by demand
type PopularBook struct {
	BookID          uint   `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	LoanCount       int64  `json:"loan_count"`
	PopularityScore int64  `json:"popularity_score"`
}

// MonthlyLoans represents loan volume for one month
type MonthlyLoans struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	// Catalog counters
	s.db.WithContext(ctx).Table("books").Where("deleted_at IS NULL").Count(&data.TotalBooks)
	s.db.WithContext(ctx).Table("books").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(total_stock), 0)").
		Scan(&data.TotalCopies)
	s.db.WithContext(ctx).Table("books").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(available_stock), 0)").
		Scan(&data.AvailableCopies)

	// Member counters
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "member").Count(&data.TotalMembers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND is_active = ? AND deleted_at IS NULL", "member", true).Count(&data.ActiveMembers)

	// Loan counters by status
	s.db.WithContext(ctx).Table("loans").Where("status = ?", "requested").Count(&data.PendingRequests)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", "approved").Count(&data.ActiveLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", "overdue").Count(&data.OverdueLoans)
	s.db.WithContext(ctx).Table("loans").Where("status = ?", "returned").Count(&data.ReturnedLoans)

	// This month
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("loans").
		Where("request_at >= ?", startOfMonth).
		Count(&data.LoansThisMonth)

	// Top books by loan demand
	var popular []PopularBook
	s.db.WithContext(ctx).Table("books").
		Select("books.id as book_id, books.title, books.author, books.popularity_score, COUNT(loans.id) as loan_count").
		Joins("LEFT JOIN loans ON loans.book_id = books.id").
		Where("books.deleted_at IS NULL").
		Group("books.id, books.title, books.author, books.popularity_score").
		Order("loan_count DESC, books.popularity_score DESC").
		Limit(10).
		Scan(&popular)
	data.PopularBooks = popular

	// Loan volume for the last 6 months
	data.LoansPerMonth = s.loansPerMonth(ctx, 6)

	return data, nil
}

// loansPerMonth counts loan requests per calendar month, oldest first
func (s *DashboardService) loansPerMonth(ctx context.Context, months int) []MonthlyLoans {
	result := make([]MonthlyLoans, 0, months)
	now := time.Now()

	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var count int64
		s.db.WithContext(ctx).Table("loans").
			Where("request_at >= ? AND request_at < ?", monthStart, monthEnd).
			Count(&count)

		result = append(result, MonthlyLoans{
			Month: monthStart.Format("2006-01"),
			Count: count,
		})
	}

	return result
}
