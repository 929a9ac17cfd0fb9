package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/http/middleware"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/http/routes"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/config"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed admin account and starter catalog
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Notification service (disabled when no mail API key is configured)
	notifier := services.NewNotificationService(cfg.Mail)
	if !notifier.IsEnabled() {
		log.Println("⚠️ Mail API key not set, notifications disabled")
	}

	// Sweep service shared by the scheduler and the manual admin trigger
	loanRepo := repositories.NewLoanRepository(db)
	sweep := services.NewSweepService(db, loanRepo, notifier, cfg.Loan.ReminderWindowDays)

	// Start cron service for the overdue sweep
	cronService := services.NewCronService(sweep, cfg.Loan.SweepSchedule)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start sweep scheduler: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Smartlib API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, notifier, sweep)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
