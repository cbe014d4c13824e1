package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/artem13815/copilot/pkg/llm"
	"github.com/artem13815/copilot/pkg/nlp"
	"github.com/artem13815/copilot/pkg/session"
)

// ErrEmptyResult — вызов модели формально удался, но списочная задача не
// принесла ни одного элемента. Инвариант пайплайна, не транспорта.
var ErrEmptyResult = errors.New("generation produced no items")

// UseCase — стадии генерации артефактов. Каждая стадия: промпт из сессии →
// вызов модели со схемой задачи → проверка полноты → merge в новую сессию.
// При любой ошибке возвращается исходная сессия без изменений.
type UseCase interface {
	AnalyzeFit(ctx context.Context, s session.Session) (session.Session, error)
	GenerateResumes(ctx context.Context, s session.Session) (session.Session, error)
	GenerateCoverLetters(ctx context.Context, s session.Session) (session.Session, error)
	GenerateQuestions(ctx context.Context, s session.Session) (session.Session, error)
	GradeAnswer(ctx context.Context, s session.Session, kind session.AnswerKind, questionIndex int, answer string) (session.Session, error)
	SuggestCandidateQuestions(ctx context.Context, s session.Session) (session.Session, error)
	NextMockQuestion(ctx context.Context, s session.Session) (session.Session, error)
	MockFeedback(ctx context.Context, s session.Session) (session.Session, error)
}

type service struct {
	client         *llm.Client
	maxPromptChars int
	variantCount   int
	questionCount  int
	candidateCount int
}

// NewService создаёт пайплайн с дефолтными размерами батчей.
func NewService(client *llm.Client) UseCase {
	return &service{
		client:         client,
		maxPromptChars: 12_000,
		variantCount:   3,
		questionCount:  5,
		candidateCount: 5,
	}
}

// trimmed возвращает копию сессии с усечёнными исходными текстами,
// чтобы промпт не выходил за лимиты модели.
func (svc *service) trimmed(s session.Session) session.Session {
	out := s.Clone()
	out.ResumeText = cutAtRune(out.ResumeText, svc.maxPromptChars)
	out.JobDescription = cutAtRune(out.JobDescription, svc.maxPromptChars)
	return out
}

// cutAtRune обрезает строку до max байт, не разрывая UTF-8 руну:
// тексты кириллические, срез по байту ломает последний символ.
func cutAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

type fitPayload struct {
	MatchScore       int      `json:"matchScore"`
	Keywords         []string `json:"keywords"`
	MissingKeywords  []string `json:"missingKeywords"`
	FormattingIssues []string `json:"formattingIssues"`
	SkillGaps        []string `json:"skillGaps"`
	Recommendations  []struct {
		Priority   string `json:"priority"`
		Suggestion string `json:"suggestion"`
		Location   string `json:"location"`
	} `json:"recommendations"`
}

func (svc *service) AnalyzeFit(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		User:   fitAnalysisPrompt(svc.trimmed(s)),
		Format: llm.JSON(fitAnalysisSchema),
	})
	if err != nil {
		return s, err
	}
	var payload fitPayload
	if err := json.Unmarshal(res.JSON, &payload); err != nil {
		return s, fmt.Errorf("%w: %v", llm.ErrAIService, err)
	}

	// Детерминированная часть: плотность терминов считаем сами по тексту
	// резюме, а «отсутствующие» термины перепроверяем — модель иногда
	// объявляет пропавшим то, что в резюме есть.
	normResume := nlp.Normalize(s.ResumeText)
	density := make([]session.KeywordCount, 0, len(payload.Keywords))
	for _, term := range payload.Keywords {
		density = append(density, session.KeywordCount{
			Term:  term,
			Count: nlp.TermCount(normResume, term),
		})
	}
	missing := make([]string, 0, len(payload.MissingKeywords))
	for _, term := range payload.MissingKeywords {
		if !nlp.ContainsTerm(normResume, term) {
			missing = append(missing, term)
		}
	}

	fa := session.FitAnalysis{
		MatchScore:       clampScore(payload.MatchScore),
		MissingKeywords:  missing,
		KeywordDensity:   density,
		FormattingIssues: emptyIfNil(payload.FormattingIssues),
		SkillGaps:        emptyIfNil(payload.SkillGaps),
		Recommendations:  make([]session.Recommendation, 0, len(payload.Recommendations)),
	}
	for _, r := range payload.Recommendations {
		fa.Recommendations = append(fa.Recommendations, session.Recommendation{
			Priority:   session.Priority(r.Priority),
			Suggestion: r.Suggestion,
			Location:   r.Location,
		})
	}
	return s.WithFitAnalysis(fa), nil
}

type versionsPayload struct {
	Versions []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	} `json:"versions"`
}

func (svc *service) generateVersions(ctx context.Context, s session.Session, prompt string) ([]session.ArtifactVersion, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		User:   prompt,
		Format: llm.JSON(artifactVersionsSchema),
	})
	if err != nil {
		return nil, err
	}
	var payload versionsPayload
	if err := json.Unmarshal(res.JSON, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrAIService, err)
	}
	if len(payload.Versions) == 0 {
		return nil, fmt.Errorf("%w: пустой список versions", ErrEmptyResult)
	}
	out := make([]session.ArtifactVersion, 0, len(payload.Versions))
	for i, v := range payload.Versions {
		out = append(out, session.ArtifactVersion{
			ID:       uuid.NewString(),
			Name:     v.Name,
			Content:  v.Content,
			Selected: i == 0,
		})
	}
	return out, nil
}

func (svc *service) GenerateResumes(ctx context.Context, s session.Session) (session.Session, error) {
	versions, err := svc.generateVersions(ctx, s, resumeVariantsPrompt(svc.trimmed(s), svc.variantCount))
	if err != nil {
		return s, err
	}
	return s.WithOptimizedResumes(versions), nil
}

func (svc *service) GenerateCoverLetters(ctx context.Context, s session.Session) (session.Session, error) {
	versions, err := svc.generateVersions(ctx, s, coverLettersPrompt(svc.trimmed(s), svc.variantCount))
	if err != nil {
		return s, err
	}
	return s.WithCoverLetters(versions), nil
}

type questionsPayload struct {
	Questions []struct {
		Type      string `json:"type"`
		Question  string `json:"question"`
		Rationale string `json:"rationale"`
	} `json:"questions"`
}

func (svc *service) GenerateQuestions(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		User:   interviewQuestionsPrompt(svc.trimmed(s), svc.questionCount),
		Format: llm.JSON(interviewQuestionsSchema),
	})
	if err != nil {
		return s, err
	}
	var payload questionsPayload
	if err := json.Unmarshal(res.JSON, &payload); err != nil {
		return s, fmt.Errorf("%w: %v", llm.ErrAIService, err)
	}
	if len(payload.Questions) == 0 {
		return s, fmt.Errorf("%w: пустой список questions", ErrEmptyResult)
	}
	questions := make([]session.InterviewQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		questions = append(questions, session.InterviewQuestion{
			Type:      session.QuestionType(q.Type),
			Question:  q.Question,
			Rationale: q.Rationale,
		})
	}
	return s.WithInterviewQuestions(questions), nil
}

func (svc *service) GradeAnswer(ctx context.Context, s session.Session, kind session.AnswerKind, questionIndex int, answer string) (session.Session, error) {
	if questionIndex < 0 || questionIndex >= len(s.InterviewQuestions) {
		return s, fmt.Errorf("%w: index %d", session.ErrNoQuestion, questionIndex)
	}
	q := s.InterviewQuestions[questionIndex]
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		User:   gradeAnswerPrompt(svc.trimmed(s), q, answer, kind == session.AnswerVerbal),
		Format: llm.JSON(answerFeedbackSchema),
	})
	if err != nil {
		return s, err
	}
	var fb session.AnswerFeedback
	if err := json.Unmarshal(res.JSON, &fb); err != nil {
		return s, fmt.Errorf("%w: %v", llm.ErrAIService, err)
	}
	fb.Score = clampScore(fb.Score)
	fb.Strengths = emptyIfNil(fb.Strengths)
	fb.Improvements = emptyIfNil(fb.Improvements)
	return s.WithAnswer(kind, session.AnswerRecord{
		QuestionIndex: questionIndex,
		Answer:        answer,
		Feedback:      &fb,
	})
}

type stringsPayload struct {
	Questions []string `json:"questions"`
}

func (svc *service) SuggestCandidateQuestions(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPrompt,
		User:   candidateQuestionsPrompt(svc.trimmed(s), svc.candidateCount),
		Format: llm.JSON(candidateQuestionsSchema),
	})
	if err != nil {
		return s, err
	}
	var payload stringsPayload
	if err := json.Unmarshal(res.JSON, &payload); err != nil {
		return s, fmt.Errorf("%w: %v", llm.ErrAIService, err)
	}
	if len(payload.Questions) == 0 {
		return s, fmt.Errorf("%w: пустой список questions", ErrEmptyResult)
	}
	return s.WithCandidateQuestions(payload.Questions), nil
}

// NextMockQuestion просит модель задать следующий вопрос интервью и
// добавляет его в транскрипт репликой интервьюера.
func (svc *service) NextMockQuestion(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPromptText,
		User:   mockQuestionPrompt(svc.trimmed(s)),
		Format: llm.Text(),
	})
	if err != nil {
		return s, err
	}
	return s.WithUtterance(session.Utterance{
		Speaker: session.SpeakerInterviewer,
		Text:    res.Text,
	}), nil
}

func (svc *service) MockFeedback(ctx context.Context, s session.Session) (session.Session, error) {
	res, err := svc.client.Generate(ctx, llm.Request{
		System: systemPromptText,
		User:   mockFeedbackPrompt(svc.trimmed(s)),
		Format: llm.Text(),
	})
	if err != nil {
		return s, err
	}
	return s.WithMockFeedback(res.Text), nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
