package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/engine"
	"github.com/artem13815/copilot/pkg/workflow"
)

type WorkflowHandler struct {
	engine *engine.Engine
}

func NewWorkflowHandler(eng *engine.Engine) *WorkflowHandler {
	return &WorkflowHandler{engine: eng}
}

type navigateRequest struct {
	Step string `json:"step"`
}

// Navigate переводит workflow на целевой шаг. Если шагу нужны ещё не
// сгенерированные данные, стадия выполняется до перехода.
// @Summary Перейти на шаг
// @Tags    workflow
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body navigateRequest true "целевой шаг"
// @Success 200 {object} presenter.StateResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /session/navigate [post]
func (h *WorkflowHandler) Navigate(c *fiber.Ctx) error {
	var req navigateRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	st, err := h.engine.NavigateTo(c.Context(), userEmail(c), workflow.Step(req.Step))
	return stateOrError(c, st, err)
}

// Back откатывает навигацию на предыдущий шаг.
// @Summary Шаг назад
// @Tags    workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Router  /session/back [post]
func (h *WorkflowHandler) Back(c *fiber.Ctx) error {
	st, err := h.engine.GoBack(userEmail(c))
	return stateOrError(c, st, err)
}

// Progress отдаёт процент прохождения и флаг показа индикатора.
// @Summary Прогресс
// @Tags    workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /session/progress [get]
func (h *WorkflowHandler) Progress(c *fiber.Ctx) error {
	st, err := h.engine.Current(userEmail(c))
	if err != nil {
		return presenter.Error(c, statusFor(err), err.Error())
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"step":         string(st.Step),
		"progress":     st.Progress,
		"showProgress": st.ShowBar,
	})
}
