package handlers

import (
	"errors"
	"strconv"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/services"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/pagination"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService  *services.LoanService
	sweepService *services.SweepService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService, sweepService *services.SweepService) *LoanHandler {
	return &LoanHandler{
		loanService:  loanService,
		sweepService: sweepService,
	}
}

// CreateLoanRequest represents a loan request body
type CreateLoanRequest struct {
	BookID uint `json:"book_id"`
}

// Create handles POST /loans - a member requests a book
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	loan, err := h.loanService.CreateRequest(c.Context(), req.BookID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		case errors.Is(err, domain.ErrInvalidState):
			return response.UnprocessableEntity(c, domain.Kind(err), "Active loan limit reached")
		default:
			return response.InternalServerError(c, "Failed to create loan request")
		}
	}

	return response.Created(c, "Loan requested successfully", loan.ToResponse())
}

// ListMy handles GET /loans/my - a member's own loan history
func (h *LoanHandler) ListMy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loans, err := h.loanService.ListUserLoans(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", toLoanResponses(loans))
}

// List handles GET /loans (admin) with optional ?status= filter
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	loans, total, err := h.loanService.ListLoans(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return response.BadRequest(c, "Unknown loan status filter")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(toLoanResponses(loans), params, total))
}

// Get handles GET /loans/:id
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetLoan(c.Context(), uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrPermissionDenied):
			return response.Forbidden(c, "You can only view your own loans")
		default:
			return response.InternalServerError(c, "Failed to get loan")
		}
	}

	return response.Success(c, "Loan retrieved successfully", loan.ToResponse())
}

// Approve handles PUT /loans/:id/approve (admin)
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	return h.process(c, domain.ActionApprove, "Loan approved successfully")
}

// Reject handles PUT /loans/:id/reject (admin)
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	return h.process(c, domain.ActionReject, "Loan rejected successfully")
}

// Return handles PUT /loans/:id/return (admin)
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	return h.process(c, domain.ActionReturn, "Return recorded successfully")
}

// process runs one admin decision and maps the error taxonomy onto HTTP
func (h *LoanHandler) process(c *fiber.Ctx, action domain.LoanAction, okMessage string) error {
	actorID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Process(c.Context(), uint(id), action, actorID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrPermissionDenied):
			return response.Forbidden(c, "Admin role required")
		case errors.Is(err, domain.ErrInvalidState):
			return response.UnprocessableEntity(c, domain.Kind(err), "Action not applicable to current loan status")
		case errors.Is(err, domain.ErrOutOfStock):
			return response.Conflict(c, domain.Kind(err), "No available copies of this book")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, domain.Kind(err), "Loan was modified concurrently, please retry")
		default:
			return response.InternalServerError(c, "Failed to process loan")
		}
	}

	return response.Success(c, okMessage, loan.ToResponse())
}

// Sweep handles POST /admin/sweep - manual trigger of the overdue sweep
func (h *LoanHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.sweepService.Run(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Sweep failed")
	}

	return response.Success(c, "Sweep completed", result)
}

// toLoanResponses maps loans to their DTO form
func toLoanResponses(loans []*models.Loan) []*models.LoanResponse {
	out := make([]*models.LoanResponse, len(loans))
	for i, loan := range loans {
		out[i] = loan.ToResponse()
	}
	return out
}
