package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/engine"
	"github.com/artem13815/copilot/pkg/history"
)

type HistoryHandler struct {
	engine  *engine.Engine
	history *history.Store
}

func NewHistoryHandler(eng *engine.Engine, hist *history.Store) *HistoryHandler {
	return &HistoryHandler{engine: eng, history: hist}
}

type historyItem struct {
	ID             string `json:"id"`
	SavedAt        string `json:"savedAt"`
	ResumeFilename string `json:"resumeFilename,omitempty"`
	JobURL         string `json:"jobUrl,omitempty"`
	MatchScore     *int   `json:"matchScore,omitempty"`
}

// List отдаёт историю пользователя, новые записи первыми.
// @Summary История сессий
// @Tags    history
// @Produce json
// @Security BearerAuth
// @Param   limit  query int false "максимум записей (по умолчанию 20)"
// @Param   offset query int false "смещение"
// @Success 200 {object} map[string]any
// @Router  /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	entries, err := h.history.List(c.Context(), userEmail(c))
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "не удалось загрузить историю")
	}

	limit, offset := parseLimitOffset(c, 20)
	total := len(entries)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]historyItem, 0, end-offset)
	for _, e := range entries[offset:end] {
		item := historyItem{
			ID:             e.Session.ID.String(),
			SavedAt:        e.SavedAt.UTC().Format(time.RFC3339),
			ResumeFilename: e.Session.ResumeFilename,
			JobURL:         e.Session.JobURL,
		}
		if e.Session.FitAnalysis != nil {
			score := e.Session.FitAnalysis.MatchScore
			item.MatchScore = &score
		}
		items = append(items, item)
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"items": items,
		"total": total,
	})
}

// Load заменяет активную сессию записью из истории целиком.
// @Summary Продолжить сессию из истории
// @Tags    history
// @Produce json
// @Security BearerAuth
// @Param   id path string true "ID сессии"
// @Success 200 {object} presenter.StateResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /history/{id}/load [post]
func (h *HistoryHandler) Load(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный ID сессии")
	}
	st, err := h.engine.LoadFromHistory(c.Context(), userEmail(c), id)
	return stateOrError(c, st, err)
}
