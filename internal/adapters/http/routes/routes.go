package routes

import (
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/http/handlers"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/http/middleware"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/repositories"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/config"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. The sweep service is
// built in main so the scheduler and the manual trigger share one instance.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, notifier *services.NotificationService, sweep *services.SweepService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	catalogService := services.NewCatalogService(db, bookRepo, userRepo, notifier)
	machine := domain.NewLoanStateMachine(cfg.Loan.DueDays)
	loanService := services.NewLoanService(
		db, loanRepo, bookRepo, userRepo, machine, notifier,
		cfg.Loan.MaxRetries, cfg.Loan.MaxActivePerUser,
	)
	reviewService := services.NewReviewService(db, reviewRepo, bookRepo)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(catalogService)
	loanHandler := handlers.NewLoanHandler(loanService, sweep)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, with stricter rate limit)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)
	authRoutes.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)

	// Catalog routes - browsing is public, mutations are admin only
	bookRoutes := apiV1.Group("/books")
	bookRoutes.Get("/", middleware.CacheControl(1*time.Minute), bookHandler.List)
	bookRoutes.Get("/categories", middleware.CacheControl(10*time.Minute), bookHandler.Categories)
	bookRoutes.Get("/:id", middleware.CacheControl(1*time.Minute), bookHandler.Get)
	bookRoutes.Post("/", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), bookHandler.Create)
	bookRoutes.Put("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), bookHandler.Update)
	bookRoutes.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), bookHandler.Delete)

	// Review routes - reading is public, writing needs a member
	bookRoutes.Get("/:id/reviews", reviewHandler.ListByBook)
	bookRoutes.Post("/:id/reviews", middleware.AuthMiddleware(cfg), reviewHandler.Create)

	// Loan routes (authenticated; user-specific data is never cached)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Use(middleware.NoCacheHeaders())
	loanRoutes.Post("/", loanHandler.Create)
	loanRoutes.Get("/my", loanHandler.ListMy)
	loanRoutes.Get("/", middleware.AdminOnly(), loanHandler.List)
	loanRoutes.Get("/:id", loanHandler.Get)
	loanRoutes.Put("/:id/approve", middleware.AdminOnly(), loanHandler.Approve)
	loanRoutes.Put("/:id/reject", middleware.AdminOnly(), loanHandler.Reject)
	loanRoutes.Put("/:id/return", middleware.AdminOnly(), loanHandler.Return)

	// Profile routes (authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Put("/", userHandler.UpdateProfile)
	profileRoutes.Put("/password", userHandler.ChangePassword)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	userRoutes.Get("/", userHandler.List)
	userRoutes.Get("/:id", userHandler.Get)
	userRoutes.Put("/:id", userHandler.Update)

	// Dashboard routes (admin only)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.AdminOnly())
	dashboardRoutes.Get("/admin", dashboardHandler.Admin)

	// Admin maintenance routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/sweep", loanHandler.Sweep)
}
