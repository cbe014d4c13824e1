package generation

import "github.com/artem13815/copilot/pkg/llm"

// Схемы ответов модели по задачам. Схема отдаётся провайдеру через
// response_format и повторно применяется для валидации распарсенного ответа.
// Пустые списки схемами не запрещаются: «минимум один элемент» — это
// инвариант пайплайна, а не транспорта.

var fitAnalysisSchema = llm.Schema{
	Name: "fit_analysis",
	Document: `{
	"type": "object",
	"properties": {
		"matchScore": {"type": "integer", "minimum": 0, "maximum": 100},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"missingKeywords": {"type": "array", "items": {"type": "string"}},
		"formattingIssues": {"type": "array", "items": {"type": "string"}},
		"skillGaps": {"type": "array", "items": {"type": "string"}},
		"recommendations": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"priority": {"type": "string", "enum": ["high", "medium", "low"]},
					"suggestion": {"type": "string"},
					"location": {"type": "string"}
				},
				"required": ["priority", "suggestion", "location"]
			}
		}
	},
	"required": ["matchScore", "keywords", "missingKeywords", "formattingIssues", "skillGaps", "recommendations"]
}`,
}

var artifactVersionsSchema = llm.Schema{
	Name: "artifact_versions",
	Document: `{
	"type": "object",
	"properties": {
		"versions": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"content": {"type": "string"}
				},
				"required": ["name", "content"]
			}
		}
	},
	"required": ["versions"]
}`,
}

var interviewQuestionsSchema = llm.Schema{
	Name: "interview_questions",
	Document: `{
	"type": "object",
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"type": {"type": "string", "enum": ["behavioral", "technical", "situational"]},
					"question": {"type": "string"},
					"rationale": {"type": "string"}
				},
				"required": ["type", "question", "rationale"]
			}
		}
	},
	"required": ["questions"]
}`,
}

var answerFeedbackSchema = llm.Schema{
	Name: "answer_feedback",
	Document: `{
	"type": "object",
	"properties": {
		"score": {"type": "integer", "minimum": 0, "maximum": 100},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"improvements": {"type": "array", "items": {"type": "string"}},
		"revisedAnswer": {"type": "string"},
		"detail": {"type": "string"}
	},
	"required": ["score", "strengths", "improvements", "revisedAnswer", "detail"]
}`,
}

var candidateQuestionsSchema = llm.Schema{
	Name: "candidate_questions",
	Document: `{
	"type": "object",
	"properties": {
		"questions": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["questions"]
}`,
}
