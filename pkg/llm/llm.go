package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrAIService covers all failures of the generative backend: transport
// errors, empty responses and non-JSON output where JSON was requested.
// Одна попытка на вызов: ретраев и кеширования нет, ошибка уходит наверх как есть.
var ErrAIService = errors.New("ai service error")

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// StructuredModel is an optional capability: providers that support a native
// structured-output mode (response_format with a JSON schema) implement it.
// Providers without it fall back to in-prompt schema instructions.
type StructuredModel interface {
	AskJSON(ctx context.Context, systemPrompt, userPrompt string, schema Schema) (string, error)
}

// Schema — структурное описание ожидаемого JSON-ответа модели.
// Document — полный JSON Schema документ, он же используется для валидации ответа.
type Schema struct {
	Name     string
	Document string
}

// Kind перечисляет закрытое множество форматов ответа.
type Kind int

const (
	PlainText Kind = iota
	StructuredJSON
)

// Format — закрытый конфиг формата ответа: либо произвольный текст,
// либо JSON по схеме.
type Format struct {
	Kind   Kind
	Schema Schema // used only when Kind == StructuredJSON
}

// Text возвращает формат «произвольный текст».
func Text() Format { return Format{Kind: PlainText} }

// JSON возвращает формат «строгий JSON по схеме».
func JSON(schema Schema) Format { return Format{Kind: StructuredJSON, Schema: schema} }

// Request — один вызов генерации.
type Request struct {
	System string
	User   string
	Format Format
}

// Result holds the model output: Text always, JSON only for structured calls
// (already fence-stripped, parsed and schema-validated).
type Result struct {
	Text string
	JSON json.RawMessage
}
