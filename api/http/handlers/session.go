package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/document"
	"github.com/artem13815/copilot/pkg/engine"
)

type SessionHandler struct {
	engine *engine.Engine
}

func NewSessionHandler(eng *engine.Engine) *SessionHandler {
	return &SessionHandler{engine: eng}
}

// Start начинает новую сессию, сбрасывая предыдущую активную.
// @Summary Начать новую сессию
// @Tags    session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /session [post]
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	st, err := h.engine.StartSession(userEmail(c))
	return stateOrError(c, st, err)
}

// Get возвращает текущее состояние сессии.
// @Summary Текущее состояние
// @Tags    session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	st, err := h.engine.Current(userEmail(c))
	return stateOrError(c, st, err)
}

type resumeTextRequest struct {
	Text string `json:"text"`
}

// UploadResume принимает резюме: multipart-файл (pdf/docx/txt) либо
// JSON с сырым текстом.
// @Summary Загрузить резюме
// @Tags    session
// @Accept  mpfd
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   file formData file false "файл резюме"
// @Success 200 {object} presenter.StateResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /session/resume [post]
func (h *SessionHandler) UploadResume(c *fiber.Ctx) error {
	email := userEmail(c)

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "не удалось прочитать файл")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "не удалось прочитать файл")
		}
		mime := fh.Header.Get("Content-Type")
		if mime == "" || mime == "application/octet-stream" {
			mime = document.MimeForFilename(fh.Filename)
		}
		st, err := h.engine.UploadResume(email, fh.Filename, mime, data)
		return stateOrError(c, st, err)
	}

	var req resumeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "ожидается файл или JSON с текстом")
	}
	st, err := h.engine.SetResumeText(email, req.Text)
	return stateOrError(c, st, err)
}

type jobRequest struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}

// SetJob принимает описание вакансии.
// @Summary Добавить описание вакансии
// @Tags    session
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body jobRequest true "описание + опциональный URL"
// @Success 200 {object} presenter.StateResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /session/job [post]
func (h *SessionHandler) SetJob(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	st, err := h.engine.SetJobDescription(userEmail(c), req.Description, req.URL)
	return stateOrError(c, st, err)
}

type editRequest struct {
	Content string `json:"content"`
}

// EditArtifact правит содержимое варианта по индексу из пути.
// cover выбирает коллекцию: письма или резюме.
func (h *SessionHandler) EditArtifact(cover bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "невалидный индекс")
		}
		var req editRequest
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
		}
		if strings.TrimSpace(req.Content) == "" {
			return presenter.Error(c, http.StatusBadRequest, "пустое содержимое")
		}
		st, err := h.engine.EditArtifact(userEmail(c), cover, index, req.Content)
		return stateOrError(c, st, err)
	}
}

type selectRequest struct {
	Index int `json:"index"`
}

// SelectArtifact помечает вариант выбранным.
func (h *SessionHandler) SelectArtifact(cover bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
		}
		st, err := h.engine.SelectArtifact(userEmail(c), cover, req.Index)
		return stateOrError(c, st, err)
	}
}

// Finish сохраняет сессию в историю пользователя.
// @Summary Завершить сессию
// @Tags    session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /session/finish [post]
func (h *SessionHandler) Finish(c *fiber.Ctx) error {
	st, err := h.engine.Finish(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

// DismissError очищает баннер последней ошибки.
// @Summary Скрыть ошибку
// @Tags    session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Router  /session/error/dismiss [post]
func (h *SessionHandler) DismissError(c *fiber.Ctx) error {
	st, err := h.engine.DismissError(userEmail(c))
	return stateOrError(c, st, err)
}
