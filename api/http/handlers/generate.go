package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/engine"
	"github.com/artem13815/copilot/pkg/session"
)

// GenerateHandler объединяет эндпоинты, которые ходят в модель.
type GenerateHandler struct {
	engine *engine.Engine
}

func NewGenerateHandler(eng *engine.Engine) *GenerateHandler {
	return &GenerateHandler{engine: eng}
}

// Analyze запускает (пере)анализ соответствия резюме и вакансии.
// @Summary Анализ соответствия
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 400 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/analyze [post]
func (h *GenerateHandler) Analyze(c *fiber.Ctx) error {
	st, err := h.engine.AnalyzeFit(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

// Resumes генерирует свежий батч вариантов резюме; прежний список
// замещается целиком.
// @Summary Сгенерировать варианты резюме
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/resumes/generate [post]
func (h *GenerateHandler) Resumes(c *fiber.Ctx) error {
	st, err := h.engine.GenerateResumes(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

// CoverLetters генерирует свежий батч сопроводительных писем.
// @Summary Сгенерировать сопроводительные письма
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/coverletters/generate [post]
func (h *GenerateHandler) CoverLetters(c *fiber.Ctx) error {
	st, err := h.engine.GenerateCoverLetters(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

// Questions генерирует батч вопросов интервью. Записанные ответы
// сбрасываются вместе с прежним списком вопросов.
// @Summary Сгенерировать вопросы интервью
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/questions/generate [post]
func (h *GenerateHandler) Questions(c *fiber.Ctx) error {
	st, err := h.engine.GenerateQuestions(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

type answerRequest struct {
	Kind          string `json:"kind"`
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

// Answer оценивает ответ кандидата на вопрос интервью. Повторный ответ
// на тот же вопрос замещает предыдущую запись.
// @Summary Оценить ответ
// @Tags    generate
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body answerRequest true "ответ: kind written|verbal"
// @Success 200 {object} presenter.StateResponse
// @Failure 400 {object} presenter.StateResponse
// @Router  /session/answers [post]
func (h *GenerateHandler) Answer(c *fiber.Ctx) error {
	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	var kind session.AnswerKind
	switch req.Kind {
	case string(session.AnswerWritten):
		kind = session.AnswerWritten
	case string(session.AnswerVerbal):
		kind = session.AnswerVerbal
	default:
		return presenter.Error(c, http.StatusBadRequest, "kind должен быть written или verbal")
	}
	st, err := h.engine.GradeAnswer(c.Context(), userEmail(c), kind, req.QuestionIndex, req.Answer)
	return stateOrError(c, st, err)
}

// CandidateQuestions генерирует вопросы кандидата интервьюеру.
// @Summary Вопросы интервьюеру
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/candidate-questions/generate [post]
func (h *GenerateHandler) CandidateQuestions(c *fiber.Ctx) error {
	st, err := h.engine.SuggestCandidateQuestions(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}

type utteranceRequest struct {
	Text string `json:"text"`
}

// MockUtterance принимает реплику кандидата (расшифровка речи приходит
// текстом) и просит модель задать следующий вопрос. Пустой текст при пустом
// транскрипте открывает интервью первым вопросом.
// @Summary Реплика мок-интервью
// @Tags    generate
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body utteranceRequest true "реплика кандидата"
// @Success 200 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/mock/utterance [post]
func (h *GenerateHandler) MockUtterance(c *fiber.Ctx) error {
	var req utteranceRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	email := userEmail(c)
	if strings.TrimSpace(req.Text) != "" {
		if st, err := h.engine.AddCandidateUtterance(email, req.Text); err != nil {
			return stateOrError(c, st, err)
		}
	}
	st, err := h.engine.NextMockQuestion(c.Context(), email)
	return stateOrError(c, st, err)
}

// MockFeedback формирует итоговую обратную связь по транскрипту.
// @Summary Итог мок-интервью
// @Tags    generate
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.StateResponse
// @Failure 400 {object} presenter.StateResponse
// @Failure 502 {object} presenter.StateResponse
// @Router  /session/mock/feedback [post]
func (h *GenerateHandler) MockFeedback(c *fiber.Ctx) error {
	st, err := h.engine.MockFeedback(c.Context(), userEmail(c))
	return stateOrError(c, st, err)
}
