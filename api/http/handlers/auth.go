package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/copilot/api/http/presenter"
	"github.com/artem13815/copilot/pkg/history"
	"github.com/artem13815/copilot/pkg/identity"
	"github.com/artem13815/copilot/pkg/security/jwt"
)

type AuthHandler struct {
	identities *identity.Store
	histories  *history.Store
	tokens     *jwt.Generator
}

func NewAuthHandler(identities *identity.Store, histories *history.Store, tokens *jwt.Generator) *AuthHandler {
	return &AuthHandler{identities: identities, histories: histories, tokens: tokens}
}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login выполняет вход по email + имени (локальная заглушка без пароля),
// создаёт Identity при первом входе и сразу подгружает историю пользователя.
// @Summary Войти
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "email + отображаемое имя"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	if strings.TrimSpace(req.Email) == "" {
		return presenter.Error(c, http.StatusBadRequest, "email обязателен")
	}

	ident, err := h.identities.LoadOrCreate(c.Context(), req.Email, strings.TrimSpace(req.Name))
	if err != nil {
		if err == identity.ErrInvalidEmail {
			return presenter.Error(c, http.StatusBadRequest, "некорректный email")
		}
		return presenter.Error(c, http.StatusInternalServerError, "не удалось выполнить вход")
	}

	token, err := h.tokens.Generate(c.Context(), ident)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "не удалось выпустить токен")
	}

	// История грузится при входе: у нового пользователя она пустая,
	// чужая история никогда не подмешивается.
	entries, err := h.histories.List(c.Context(), ident.Email)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "не удалось загрузить историю")
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"email":        ident.Email,
		"name":         ident.Name,
		"createdAt":    ident.CreatedAt.Format(time.RFC3339),
		"token":        token,
		"historyCount": len(entries),
	})
}
