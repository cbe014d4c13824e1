package generation

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copilot/pkg/llm"
	"github.com/artem13815/copilot/pkg/session"
)

// scriptedModel отдаёт заготовленные ответы по очереди.
type scriptedModel struct {
	replies []string
	calls   int
}

func (m *scriptedModel) Ask(ctx context.Context, system, user string) (string, error) {
	if m.calls >= len(m.replies) {
		return "", errors.New("unexpected model call")
	}
	reply := m.replies[m.calls]
	m.calls++
	return reply, nil
}

func newTestService(replies ...string) (UseCase, *scriptedModel) {
	model := &scriptedModel{replies: replies}
	return NewService(llm.NewClient(model)), model
}

func inputsSession() session.Session {
	s := session.New()
	s = s.WithSourceResume("Go developer. Docker, PostgreSQL, five years of backend work.", "resume.txt")
	s = s.WithJobDescription("We need a Golang developer with Kubernetes experience.", "")
	return s
}

func TestAnalyzeFit(t *testing.T) {
	svc, _ := newTestService(`{
		"matchScore": 87,
		"keywords": ["go", "docker", "postgres"],
		"missingKeywords": ["kubernetes", "docker"],
		"formattingIssues": [],
		"skillGaps": ["kubernetes"],
		"recommendations": [
			{"priority": "high", "suggestion": "Добавьте опыт с Kubernetes", "location": "skills"}
		]
	}`)

	s := inputsSession()
	out, err := svc.AnalyzeFit(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, out.FitAnalysis)

	assert.Equal(t, 87, out.FitAnalysis.MatchScore)

	// плотность считается детерминированно по тексту резюме, с учётом алиасов
	density := map[string]int{}
	for _, kc := range out.FitAnalysis.KeywordDensity {
		density[kc.Term] = kc.Count
	}
	assert.Equal(t, 1, density["go"])
	assert.Equal(t, 1, density["docker"])
	assert.Equal(t, 1, density["postgres"]) // найден как postgresql

	// docker есть в резюме: модель ошиблась, термин вычеркнут из missing
	assert.Equal(t, []string{"kubernetes"}, out.FitAnalysis.MissingKeywords)

	require.Len(t, out.FitAnalysis.Recommendations, 1)
	assert.Equal(t, session.PriorityHigh, out.FitAnalysis.Recommendations[0].Priority)

	// исходная сессия не тронута
	assert.Nil(t, s.FitAnalysis)
}

func TestGenerateResumes(t *testing.T) {
	svc, _ := newTestService(`{"versions": [
		{"name": "Консервативный", "content": "вариант 1"},
		{"name": "Смелый", "content": "вариант 2"}
	]}`)

	s := inputsSession()
	out, err := svc.GenerateResumes(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, out.OptimizedResumes, 2)
	assert.True(t, out.OptimizedResumes[0].Selected)
	assert.False(t, out.OptimizedResumes[1].Selected)
	assert.Equal(t, 0, out.SelectedResume)
	assert.NotEmpty(t, out.OptimizedResumes[0].ID)
	assert.NotEqual(t, out.OptimizedResumes[0].ID, out.OptimizedResumes[1].ID)
}

func TestGenerateResumesEmptyBatch(t *testing.T) {
	// пустой список формально валиден по схеме, но для пайплайна это провал
	svc, _ := newTestService(`{"versions": []}`)

	s := inputsSession()
	out, err := svc.GenerateResumes(context.Background(), s)
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.Equal(t, s.ID, out.ID)
	assert.Empty(t, out.OptimizedResumes)
}

func TestGenerateCoverLettersReplacesBatch(t *testing.T) {
	svc, _ := newTestService(
		`{"versions": [{"name": "A", "content": "первое"}]}`,
		`{"versions": [{"name": "B", "content": "второе"}, {"name": "C", "content": "третье"}]}`,
	)

	s := inputsSession()
	s, err := svc.GenerateCoverLetters(context.Background(), s)
	require.NoError(t, err)
	selected, err := s.WithSelected(true, 0)
	require.NoError(t, err)

	out, err := svc.GenerateCoverLetters(context.Background(), selected)
	require.NoError(t, err)
	require.Len(t, out.CoverLetters, 2)
	assert.Equal(t, "B", out.CoverLetters[0].Name)
	assert.Equal(t, 0, out.SelectedCoverLetter)
}

func TestGenerateQuestions(t *testing.T) {
	svc, _ := newTestService(`{"questions": [
		{"type": "behavioral", "question": "Расскажите о сложном релизе", "rationale": "выявляет опыт"},
		{"type": "technical", "question": "Как устроен map в Go", "rationale": "проверка глубины"}
	]}`)

	out, err := svc.GenerateQuestions(context.Background(), inputsSession())
	require.NoError(t, err)
	require.Len(t, out.InterviewQuestions, 2)
	assert.Equal(t, session.QuestionBehavioral, out.InterviewQuestions[0].Type)
	assert.Empty(t, out.WrittenAnswers)
}

func TestGradeAnswer(t *testing.T) {
	questionsReply := `{"questions": [{"type": "technical", "question": "Что такое goroutine", "rationale": "база"}]}`
	feedbackReply := `{
		"score": 80,
		"strengths": ["точная терминология"],
		"improvements": ["добавьте пример"],
		"revisedAnswer": "Горутина: легковесный поток рантайма Go...",
		"detail": "Ответ верный, но без примеров."
	}`
	svc, _ := newTestService(questionsReply, feedbackReply, feedbackReply)

	s, err := svc.GenerateQuestions(context.Background(), inputsSession())
	require.NoError(t, err)

	out, err := svc.GradeAnswer(context.Background(), s, session.AnswerWritten, 0, "Лёгкий поток")
	require.NoError(t, err)
	require.Len(t, out.WrittenAnswers, 1)
	rec := out.WrittenAnswers[0]
	assert.Equal(t, "Лёгкий поток", rec.Answer)
	require.NotNil(t, rec.Feedback)
	assert.Equal(t, 80, rec.Feedback.Score)

	// повторная оценка того же вопроса заменяет запись, а не дублирует
	out, err = svc.GradeAnswer(context.Background(), out, session.AnswerWritten, 0, "Развёрнутый ответ")
	require.NoError(t, err)
	require.Len(t, out.WrittenAnswers, 1)
	assert.Equal(t, "Развёрнутый ответ", out.WrittenAnswers[0].Answer)
}

func TestGradeAnswerUnknownQuestion(t *testing.T) {
	svc, model := newTestService()
	s := inputsSession()
	_, err := svc.GradeAnswer(context.Background(), s, session.AnswerWritten, 3, "ответ")
	assert.ErrorIs(t, err, session.ErrNoQuestion)
	// до модели дело не дошло
	assert.Zero(t, model.calls)
}

func TestSuggestCandidateQuestions(t *testing.T) {
	svc, _ := newTestService(`{"questions": ["Как устроен онбординг?", "Какой стек у команды?"]}`)
	out, err := svc.SuggestCandidateQuestions(context.Background(), inputsSession())
	require.NoError(t, err)
	assert.Len(t, out.CandidateQuestions, 2)
}

func TestNextMockQuestionAppendsInterviewerUtterance(t *testing.T) {
	svc, _ := newTestService("Почему вы хотите работать у нас?")
	out, err := svc.NextMockQuestion(context.Background(), inputsSession())
	require.NoError(t, err)
	require.Len(t, out.MockTranscript, 1)
	assert.Equal(t, session.SpeakerInterviewer, out.MockTranscript[0].Speaker)
	assert.Equal(t, "Почему вы хотите работать у нас?", out.MockTranscript[0].Text)
}

func TestMockFeedback(t *testing.T) {
	svc, _ := newTestService("Вы держались уверенно, но ответы стоит структурировать.")
	s := inputsSession().WithUtterance(session.Utterance{Speaker: session.SpeakerCandidate, Text: "..."})
	out, err := svc.MockFeedback(context.Background(), s)
	require.NoError(t, err)
	assert.NotEmpty(t, out.MockFeedback)
}

func TestCutAtRune(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays whole", "резюме", 100, "резюме"},
		{"ascii exact cut", "abcdef", 3, "abc"},
		{"cyrillic mid-rune", "абвгд", 7, "абв"}, // 7 байт режет "г" пополам
		{"zero max", "абв", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cutAtRune(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result %q is not valid UTF-8", got)
			}
		})
	}
}

func TestTrimmedKeepsValidUTF8(t *testing.T) {
	svc := &service{maxPromptChars: 7}
	s := session.New().WithSourceResume("абвгдежзик", "resume.txt")
	out := svc.trimmed(s)
	assert.True(t, utf8.ValidString(out.ResumeText))
	assert.Equal(t, "абв", out.ResumeText)
	// исходная сессия не усечена
	assert.Equal(t, "абвгдежзик", s.ResumeText)
}

func TestStageFailureLeavesSessionUntouched(t *testing.T) {
	svc, _ := newTestService("не json")
	s := inputsSession()
	out, err := svc.AnalyzeFit(context.Background(), s)
	assert.ErrorIs(t, err, llm.ErrAIService)
	assert.Nil(t, out.FitAnalysis)
	assert.Equal(t, s.ID, out.ID)
}
