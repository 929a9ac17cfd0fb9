package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DisplayName string         `gorm:"size:100;not null" json:"display_name"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Role        string         `gorm:"size:20;default:'member'" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Subscribe   bool           `gorm:"default:false" json:"subscribe"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	Subscribe   bool      `json:"subscribe"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Subscribe:   u.Subscribe,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog Tables
// ============================================================

// Book represents books table. AvailableStock is mutated only by the loan
// coordinator and the admin edit reconcile path; everywhere else it is a
// read-only snapshot.
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null;index" json:"title"`
	Author          string         `gorm:"size:100;not null" json:"author"`
	ISBN            string         `gorm:"size:20;index" json:"isbn"`
	Category        string         `gorm:"size:50;index" json:"category"`
	Description     string         `gorm:"type:text" json:"description"`
	CoverURL        string         `gorm:"size:500" json:"cover_url"`
	TotalStock      int            `gorm:"not null;default:0" json:"total_stock"`
	AvailableStock  int            `gorm:"not null;default:0" json:"available_stock"`
	PopularityScore int            `gorm:"not null;default:0" json:"popularity_score"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ============================================================
// Loan Tables
// ============================================================

// Loan represents loans table. Loans are never deleted; they are retained
// as borrowing history. RequestAt is set at creation and never changes.
type Loan struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	BookID         uint       `gorm:"not null;index" json:"book_id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Status         string     `gorm:"size:20;not null;default:'requested';index" json:"status"`
	RequestAt      time.Time  `gorm:"autoCreateTime" json:"request_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
	DueDate        *time.Time `gorm:"index" json:"due_date"`
	ProcessedAt    *time.Time `json:"processed_at"`
	ReturnedAt     *time.Time `json:"returned_at"`
	ReminderSentAt *time.Time `json:"-"`

	// Relations
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanResponse DTO
type LoanResponse struct {
	ID         uint       `json:"id"`
	BookID     uint       `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	UserID     uint       `json:"user_id"`
	UserName   string     `json:"user_name,omitempty"`
	Status     string     `json:"status"`
	RequestAt  time.Time  `json:"request_at"`
	ApprovedAt *time.Time `json:"approved_at"`
	DueDate    *time.Time `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		UserID:     l.UserID,
		Status:     l.Status,
		RequestAt:  l.RequestAt,
		ApprovedAt: l.ApprovedAt,
		DueDate:    l.DueDate,
		ReturnedAt: l.ReturnedAt,
	}

	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}
	if l.User != nil {
		resp.UserName = l.User.DisplayName
	}

	return resp
}

// ============================================================
// Review Tables
// ============================================================

// Review represents reviews table. The ID is a caller-supplied (or
// generated) uuid acting as an idempotency key: the primary key makes a
// duplicate delivery of the same review impossible, which in turn keeps
// the popularity increment exactly-once per review.
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	BookID    uint      `gorm:"not null;index" json:"book_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Book *Book `gorm:"foreignKey:BookID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&Loan{},
		&Review{},
	)
}
