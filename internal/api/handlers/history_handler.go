package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/auth"
	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/logger"
)

const historyLimit = 10

// HistoryStore is the read side of the run history.
type HistoryStore interface {
	GetAnalysisHistory(userID string, limit int) ([]models.AnalysisRun, error)
}

type HistoryHandler struct {
	store HistoryStore
}

func NewHistoryHandler(store HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// GetHistory returns the user's most recent runs, newest first.
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	user := auth.UserFromCtx(c)

	runs, err := h.store.GetAnalysisHistory(user.ID, historyLimit)
	if err != nil {
		logger.Error("Failed to fetch history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to fetch history: %s", err.Error()),
		})
	}

	history := make([]fiber.Map, 0, len(runs))
	for _, run := range runs {
		history = append(history, fiber.Map{
			"id":                      run.ID,
			"url":                     run.URL,
			"platform":                run.Platform,
			"positive_percent":        run.PositivePercent,
			"negative_percent":        run.NegativePercent,
			"purchase_intent_percent": run.PurchaseIntentPercent,
			"total_comments":          run.TotalComments,
			"created_at":              run.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}
