package session

import (
	"time"

	"github.com/google/uuid"
)

// Speaker — участник мок-интервью.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// QuestionType — закрытое множество типов вопросов интервью.
type QuestionType string

const (
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionTechnical   QuestionType = "technical"
	QuestionSituational QuestionType = "situational"
)

// Priority рекомендации в fit-анализе.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AnswerKind — категория ответа на вопрос интервью.
type AnswerKind string

const (
	AnswerWritten AnswerKind = "written"
	AnswerVerbal  AnswerKind = "verbal"
)

// ArtifactVersion — один сгенерированный вариант резюме или сопроводительного
// письма. Создаётся только батчем, правится на месте, индивидуально не удаляется —
// только заменяется свежим батчем.
type ArtifactVersion struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Selected bool   `json:"selected,omitempty"`
}

// KeywordCount — пара (термин, количество вхождений).
type KeywordCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Recommendation — одна рекомендация по улучшению резюме.
type Recommendation struct {
	Priority   Priority `json:"priority"`
	Suggestion string   `json:"suggestion"`
	Location   string   `json:"location"`
}

// FitAnalysis — результат анализа соответствия резюме вакансии.
// Неизменяемый: повторный анализ заменяет его целиком.
type FitAnalysis struct {
	MatchScore       int              `json:"matchScore"`
	MissingKeywords  []string         `json:"missingKeywords"`
	KeywordDensity   []KeywordCount   `json:"keywordDensity"`
	FormattingIssues []string         `json:"formattingIssues"`
	SkillGaps        []string         `json:"skillGaps"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// InterviewQuestion — вопрос интервью с обоснованием. Батч неизменяемый.
type InterviewQuestion struct {
	Type      QuestionType `json:"type"`
	Question  string       `json:"question"`
	Rationale string       `json:"rationale"`
}

// AnswerFeedback — оценка ответа моделью.
type AnswerFeedback struct {
	Score         int      `json:"score"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	RevisedAnswer string   `json:"revisedAnswer"`
	Detail        string   `json:"detail"`
}

// AnswerRecord — ответ на вопрос с индексом в списке вопросов.
// На один индекс в одной категории — не более одной записи.
type AnswerRecord struct {
	QuestionIndex int             `json:"questionIndex"`
	Answer        string          `json:"answer"`
	Feedback      *AnswerFeedback `json:"feedback,omitempty"`
}

// Utterance — реплика мок-интервью.
type Utterance struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Session — полная запись одного прохода пользователя по workflow.
// Значение: любая мутация производит новую Session (copy-on-write),
// общее состояние никогда не правится на месте.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	ResumeText     string `json:"resumeText"`
	ResumeFilename string `json:"resumeFilename,omitempty"`
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl,omitempty"`

	FitAnalysis *FitAnalysis `json:"fitAnalysis,omitempty"`

	OptimizedResumes []ArtifactVersion `json:"optimizedResumes"`
	SelectedResume   int               `json:"selectedResume"`

	CoverLetters        []ArtifactVersion `json:"coverLetters"`
	SelectedCoverLetter int               `json:"selectedCoverLetter"`

	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
	WrittenAnswers     []AnswerRecord      `json:"writtenAnswers"`
	VerbalAnswers      []AnswerRecord      `json:"verbalAnswers"`
	CandidateQuestions []string            `json:"candidateQuestions"`

	MockTranscript []Utterance `json:"mockTranscript"`
	MockFeedback   string      `json:"mockFeedback,omitempty"`
}

// New создаёт свежую пустую сессию с новым идентификатором.
func New() Session {
	return Session{
		ID:                 uuid.New(),
		CreatedAt:          time.Now().UTC(),
		OptimizedResumes:   []ArtifactVersion{},
		CoverLetters:       []ArtifactVersion{},
		InterviewQuestions: []InterviewQuestion{},
		WrittenAnswers:     []AnswerRecord{},
		VerbalAnswers:      []AnswerRecord{},
		CandidateQuestions: []string{},
		MockTranscript:     []Utterance{},
	}
}
