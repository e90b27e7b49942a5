// internal/api/handlers/posts.go
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/article_generator/internal/models"
	"github.com/chynybekuuludastan/article_generator/internal/repository"
)

// PostHandler handles stored post requests
type PostHandler struct {
	PostRepo repository.PostRepository
}

// NewPostHandler creates a new post handler
func NewPostHandler(repo repository.PostRepository) *PostHandler {
	return &PostHandler{PostRepo: repo}
}

// @Summary List posts
// @Description List stored posts with pagination, optionally filtered by status
// @Tags posts
// @Produce json
// @Param status query string false "Filter by status (draft, needs_review, published)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{} "Posts"
// @Security BearerAuth
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	posts, total, err := h.PostRepo.FindAll(c.Query("status"), page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"posts":     posts,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// @Summary Get a post
// @Description Get a stored post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} map[string]interface{} "Post"
// @Failure 404 {object} map[string]interface{} "Post not found"
// @Security BearerAuth
// @Router /posts/{slug} [get]
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.PostRepo.FindBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    post,
	})
}

// UpdateStatusRequest represents a post status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft needs_review published"`
}

// @Summary Update post status
// @Description Move a post between draft, needs_review and published
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{} "Status updated"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /posts/{id}/status [patch]
func (h *PostHandler) UpdateStatus(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid post ID",
		})
	}

	req := new(UpdateStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	switch req.Status {
	case models.PostStatusDraft, models.PostStatusNeedsReview, models.PostStatusPublished:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown status",
		})
	}

	if err := h.PostRepo.UpdateStatus(postID, req.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":     postID,
			"status": req.Status,
		},
	})
}
