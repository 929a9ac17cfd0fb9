package handlers

import (
	"errors"
	"strconv"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/domain"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/core/services"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/pagination"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents a review submission body. Key is the
// optional client-supplied idempotency key; resend the same key when
// retrying a submission.
type CreateReviewRequest struct {
	Key    string `json:"key"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// Create handles POST /books/:id/reviews
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.Key) > 36 {
		return response.BadRequest(c, "Review key must be at most 36 characters")
	}

	review, err := h.reviewService.Create(c.Context(), services.CreateReviewInput{
		Key:    req.Key,
		BookID: uint(bookID),
		UserID: userID,
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRating):
			return response.BadRequest(c, "Rating must be between 1 and 5")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrDuplicateReview):
			return response.Conflict(c, domain.Kind(err), "This review was already recorded")
		default:
			return response.InternalServerError(c, "Failed to create review")
		}
	}

	return response.Created(c, "Review created successfully", review)
}

// ListByBook handles GET /books/:id/reviews
func (h *ReviewHandler) ListByBook(c *fiber.Ctx) error {
	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	params := pagination.GetParams(c)

	reviews, total, err := h.reviewService.ListByBook(c.Context(), uint(bookID), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to list reviews")
	}

	return response.Success(c, "Reviews retrieved successfully", pagination.NewResponse(reviews, params, total))
}
