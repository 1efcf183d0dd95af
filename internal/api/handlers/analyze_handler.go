package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/analysis"
	"github.com/sentimentscope/backend/internal/auth"
	"github.com/sentimentscope/backend/internal/platform"
	"github.com/sentimentscope/backend/internal/sources"
	"github.com/sentimentscope/backend/pkg/logger"
)

type AnalyzeHandler struct {
	router *platform.Router
	engine *analysis.Engine
}

func NewAnalyzeHandler(router *platform.Router, engine *analysis.Engine) *AnalyzeHandler {
	return &AnalyzeHandler{
		router: router,
		engine: engine,
	}
}

// Probe is the authenticated GET on the analysis endpoint. No side
// effects; it just confirms the token works.
func (h *AnalyzeHandler) Probe(c *fiber.Ctx) error {
	user := auth.UserFromCtx(c)
	return c.JSON(fiber.Map{
		"message": "API is working! Use POST to fetch comments.",
		"user":    user.Username,
	})
}

// Analyze runs the full pipeline for one URL: route, fetch, classify,
// aggregate. Client mistakes map to 400; anything unexpected is caught
// here and reported as a 500 with the error text echoed.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected analysis failure", zap.Any("panic", r))
			err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Analysis failed: %v", r),
			})
		}
	}()

	user := auth.UserFromCtx(c)

	var req struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
		})
	}

	platformTag, fetcher, err := h.router.Resolve(req.URL)
	if errors.Is(err, platform.ErrUnsupportedPlatform) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported platform",
		})
	}

	logger.Info("Starting comment analysis",
		zap.String("platform", platformTag),
		zap.String("url", req.URL),
		zap.String("user", user.Username),
	)

	rawComments, err := fetcher.Fetch(c.Context(), req.URL)
	if err != nil {
		// Only the Instagram fetcher errors here; its failures are
		// client-visible rather than degraded.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fetchErrorMessage(err),
		})
	}

	summary := h.engine.Run(c.Context(), req.URL, platformTag, rawComments, user)
	return c.JSON(summary)
}

func fetchErrorMessage(err error) string {
	switch {
	case errors.Is(err, sources.ErrInvalidURL):
		return "Invalid Instagram URL"
	case errors.Is(err, sources.ErrNoComments):
		return "No comments found"
	default:
		return err.Error()
	}
}
