// internal/api/handlers/generation.go
package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/chynybekuuludastan/article_generator/internal/api/websocket"
	"github.com/chynybekuuludastan/article_generator/internal/config"
	"github.com/chynybekuuludastan/article_generator/internal/repository"
	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
	"github.com/chynybekuuludastan/article_generator/internal/service/llm"
)

// GenerationHandler handles article generation requests
type GenerationHandler struct {
	Service     *generator.Service
	AttemptRepo repository.AttemptRepository
	KeywordRepo repository.KeywordRepository
	Hub         *websocket.Hub
	Config      *config.Config
	Logger      llm.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(service *generator.Service, attemptRepo repository.AttemptRepository, keywordRepo repository.KeywordRepository, hub *websocket.Hub, cfg *config.Config, logger llm.Logger) *GenerationHandler {
	return &GenerationHandler{
		Service:     service,
		AttemptRepo: attemptRepo,
		KeywordRepo: keywordRepo,
		Hub:         hub,
		Config:      cfg,
		Logger:      logger,
	}
}

// GenerateRequest represents a request to generate an article
type GenerateRequest struct {
	Topic     string   `json:"topic" validate:"required"`
	Keywords  []string `json:"keywords" validate:"required,min=1"`
	WordCount string   `json:"word_count"` // short, medium, long, detailed
	Providers []string `json:"providers"`
}

// @Summary Generate an article
// @Description Start an article generation run. By default the run is asynchronous: the response carries a generation ID whose progress streams over /ws/generation/{id}. With sync=true the call blocks until the run finishes and returns the record and report inline.
// @Tags generation
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Generation Request"
// @Param sync query bool false "Wait for the run to finish"
// @Success 200 {object} map[string]interface{} "Generation result (sync)"
// @Success 202 {object} map[string]interface{} "Generation started (async)"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 500 {object} map[string]interface{} "Generation failed"
// @Security BearerAuth
// @Router /generate [post]
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	req := new(GenerateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.Topic == "" || len(req.Keywords) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "topic and at least one keyword are required",
		})
	}

	generationID := uuid.New().String()
	genReq := &generator.GenerationRequest{
		Topic:     req.Topic,
		Keywords:  req.Keywords,
		WordCount: req.WordCount,
		Providers: req.Providers,
		Progress: func(stage, provider string) {
			h.Hub.BroadcastToGeneration(generationID, websocket.Message{
				Type: "progress",
				Data: fiber.Map{
					"generation_id": generationID,
					"stage":         stage,
					"provider":      provider,
				},
			})
		},
	}

	if c.QueryBool("sync") {
		result, err := h.runGeneration(c.UserContext(), generationID, genReq)
		if err != nil {
			return h.generationError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"generation_id": generationID,
				"clean":         result.Clean,
				"record":        result.Record,
				"report":        result.Report,
			},
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.Config.GenerationTimeout)
		defer cancel()

		result, err := h.runGeneration(ctx, generationID, genReq)
		if err != nil {
			h.Logger.Error("generation run failed", "generation_id", generationID, "error", err)
			h.Hub.BroadcastToGeneration(generationID, websocket.Message{
				Type: "failed",
				Data: fiber.Map{
					"generation_id": generationID,
					"error":         err.Error(),
				},
			})
			return
		}
		h.Hub.BroadcastToGeneration(generationID, websocket.Message{
			Type: "completed",
			Data: fiber.Map{
				"generation_id": generationID,
				"clean":         result.Clean,
				"record":        result.Record,
				"report":        result.Report,
			},
		})
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"generation_id": generationID,
			"status":        "started",
		},
	})
}

// runGeneration executes one run and records the focus keyword on success.
func (h *GenerationHandler) runGeneration(ctx context.Context, generationID string, req *generator.GenerationRequest) (*generator.GenerationResult, error) {
	result, err := h.Service.Generate(ctx, generationID, req)
	if err != nil {
		return nil, err
	}
	if kw := result.Record.FocusKeyword; kw != "" {
		if err := h.KeywordRepo.MarkUsed(kw, nil); err != nil {
			h.Logger.Error("recording keyword usage failed", "keyword", kw, "error", err)
		}
	}
	return result, nil
}

func (h *GenerationHandler) generationError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, generator.ErrTopicRequired),
		errors.Is(err, generator.ErrKeywordsRequired),
		errors.Is(err, generator.ErrNoProviderConfigured):
		status = fiber.StatusBadRequest
	case errors.Is(err, generator.ErrNoProviderSucceeded):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// @Summary List generation attempts
// @Description List every provider call of one generation run in order
// @Tags generation
// @Produce json
// @Param id path string true "Generation ID"
// @Success 200 {object} map[string]interface{} "Attempts"
// @Security BearerAuth
// @Router /generate/{id}/attempts [get]
func (h *GenerationHandler) ListAttempts(c *fiber.Ctx) error {
	attempts, err := h.AttemptRepo.FindByGenerationID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    attempts,
	})
}

// @Summary Validate a content record
// @Description Run the SEO and readability rules against a record without changing it
// @Tags generation
// @Accept json
// @Produce json
// @Param record body generator.ContentRecord true "Content Record"
// @Success 200 {object} map[string]interface{} "Validation result"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /validate [post]
func (h *GenerationHandler) Validate(c *fiber.Ctx) error {
	rec := new(generator.ContentRecord)
	if err := c.BodyParser(rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	violations := h.Service.ValidateExisting(rec)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"valid":      len(violations) == 0,
			"violations": violations,
		},
	})
}

// @Summary Auto-fix a content record
// @Description Apply the deterministic fixes to a record and return it with the remaining violations
// @Tags generation
// @Accept json
// @Produce json
// @Param record body generator.ContentRecord true "Content Record"
// @Success 200 {object} map[string]interface{} "Fixed record"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /autofix [post]
func (h *GenerationHandler) AutoFix(c *fiber.Ctx) error {
	rec := new(generator.ContentRecord)
	if err := c.BodyParser(rec); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	changed, violations := h.Service.AutoFixExisting(rec)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"changed":    changed,
			"record":     rec,
			"violations": violations,
		},
	})
}

// HandleWebSocket streams progress events for one generation run
func (h *GenerationHandler) HandleWebSocket(conn *fiberws.Conn) {
	h.Hub.HandleConnection(conn, conn.Params("id"))
}
