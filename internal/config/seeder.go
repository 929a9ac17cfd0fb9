package config

import (
	"log"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if err := s.seedSampleBooks(); err != nil {
		log.Printf("⚠️ Book seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		DisplayName: "Library Admin",
		Username:    "admin",
		Email:       "admin@smartlib.local",
		Password:    hashedPassword,
		Role:        "admin",
		IsActive:    true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedSampleBooks seeds a small starter catalog for development
func (s *Seeder) seedSampleBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalog already has data
	}

	books := []models.Book{
		{
			Title:          "The Pragmatic Programmer",
			Author:         "Andrew Hunt, David Thomas",
			ISBN:           "9780135957059",
			Category:       "Software",
			TotalStock:     3,
			AvailableStock: 3,
		},
		{
			Title:          "Designing Data-Intensive Applications",
			Author:         "Martin Kleppmann",
			ISBN:           "9781449373320",
			Category:       "Software",
			TotalStock:     2,
			AvailableStock: 2,
		},
		{
			Title:          "Sapiens",
			Author:         "Yuval Noah Harari",
			ISBN:           "9780062316097",
			Category:       "History",
			TotalStock:     4,
			AvailableStock: 4,
		},
	}

	if err := s.db.Create(&books).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d sample books", len(books))
	return nil
}
