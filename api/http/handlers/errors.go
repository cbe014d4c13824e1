package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/document"
	"github.com/artem13815/copilot/pkg/engine"
	"github.com/artem13815/copilot/pkg/generation"
	"github.com/artem13815/copilot/pkg/history"
	"github.com/artem13815/copilot/pkg/llm"
	"github.com/artem13815/copilot/pkg/session"
	"github.com/artem13815/copilot/pkg/workflow"
)

// statusFor маппит доменные ошибки на HTTP-статусы.
func statusFor(err error) int {
	var validation engine.ErrValidation
	switch {
	case errors.As(err, &validation),
		errors.Is(err, workflow.ErrUnknownStep),
		errors.Is(err, session.ErrIndexOutOfRange),
		errors.Is(err, session.ErrNoQuestion):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoSession),
		errors.Is(err, history.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrBusy),
		errors.Is(err, workflow.ErrTransition):
		return http.StatusConflict
	case errors.Is(err, document.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrAIService),
		errors.Is(err, generation.ErrEmptyResult):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// stateOrError отдаёт снимок состояния; при доменной ошибке снимок всё равно
// уходит в теле вместе со статусом, чтобы фронт показал баннер поверх шага.
func stateOrError(c *fiber.Ctx, st engine.State, err error) error {
	if err != nil {
		if errors.Is(err, engine.ErrNoSession) || errors.Is(err, engine.ErrBusy) {
			return presenter.Error(c, statusFor(err), err.Error())
		}
		return presenter.JSON(c, statusFor(err), presenter.NewState(st))
	}
	return presenter.JSON(c, http.StatusOK, presenter.NewState(st))
}

// userEmail достаёт email из JWT-контекста.
func userEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("userEmail").(string)
	return email
}
