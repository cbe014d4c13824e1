package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Client превращает ChatModel в схемо-валидирующий генератор: формирует вызов,
// нормализует ответ (снимает код-фенс), парсит JSON и проверяет его по схеме.
// Без схемы — возвращает сырой текст.
type Client struct {
	model ChatModel
}

func NewClient(model ChatModel) *Client {
	return &Client{model: model}
}

// Generate performs a single model call. No retries, no caching: identical
// prompts produce independent calls and every failure is surfaced to the
// caller wrapped in ErrAIService.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	if c.model == nil {
		return Result{}, fmt.Errorf("%w: модель не настроена", ErrAIService)
	}

	var raw string
	var err error
	switch req.Format.Kind {
	case StructuredJSON:
		if sm, ok := c.model.(StructuredModel); ok {
			raw, err = sm.AskJSON(ctx, req.System, req.User, req.Format.Schema)
		} else {
			// Провайдер без нативного structured output: схема уходит в промпт.
			user := req.User + "\n\nВерни СТРОГО один JSON-объект по схеме (без markdown и пояснений):\n" + req.Format.Schema.Document
			raw, err = c.model.Ask(ctx, req.System, user)
		}
	default:
		raw, err = c.model.Ask(ctx, req.System, req.User)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrAIService, err)
	}
	if strings.TrimSpace(raw) == "" {
		return Result{}, fmt.Errorf("%w: пустой ответ модели", ErrAIService)
	}

	if req.Format.Kind != StructuredJSON {
		return Result{Text: raw}, nil
	}

	cleaned := StripFence(raw)
	var parsed json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: невалидный JSON в ответе модели: %v", ErrAIService, err)
	}
	if err := validateAgainstSchema(req.Format.Schema.Document, cleaned); err != nil {
		return Result{}, fmt.Errorf("%w: ответ не соответствует схеме %s: %v", ErrAIService, req.Format.Schema.Name, err)
	}
	return Result{Text: raw, JSON: parsed}, nil
}

func validateAgainstSchema(schemaDoc, data string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaDoc),
		gojsonschema.NewStringLoader(data),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
