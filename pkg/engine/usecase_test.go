package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copilot/pkg/document"
	"github.com/artem13815/copilot/pkg/history"
	"github.com/artem13815/copilot/pkg/kv"
	"github.com/artem13815/copilot/pkg/session"
	"github.com/artem13815/copilot/pkg/workflow"
)

const testEmail = "user@example.com"

// fakeGen — управляемый пайплайн генерации: считает вызовы стадий,
// опционально блокируется и отдаёт заготовленные результаты.
type fakeGen struct {
	mu      sync.Mutex
	calls   map[string]int
	err     error
	block   chan struct{} // если не nil, стадия ждёт закрытия канала
	started chan struct{} // закрывается при входе в первую стадию

	questions []session.InterviewQuestion
}

func newFakeGen() *fakeGen {
	return &fakeGen{calls: map[string]int{}}
}

func (g *fakeGen) stage(name string, s session.Session, apply func(session.Session) session.Session) (session.Session, error) {
	g.mu.Lock()
	g.calls[name]++
	started := g.started
	g.started = nil
	block := g.block
	g.mu.Unlock()
	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if g.err != nil {
		return s, g.err
	}
	return apply(s), nil
}

func (g *fakeGen) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGen) AnalyzeFit(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("analyze", s, func(s session.Session) session.Session {
		return s.WithFitAnalysis(session.FitAnalysis{MatchScore: 72})
	})
}

func (g *fakeGen) GenerateResumes(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("resumes", s, func(s session.Session) session.Session {
		return s.WithOptimizedResumes([]session.ArtifactVersion{{ID: "r1", Name: "v1", Content: "резюме", Selected: true}})
	})
}

func (g *fakeGen) GenerateCoverLetters(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("letters", s, func(s session.Session) session.Session {
		return s.WithCoverLetters([]session.ArtifactVersion{{ID: "c1", Name: "v1", Content: "письмо", Selected: true}})
	})
}

func (g *fakeGen) GenerateQuestions(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("questions", s, func(s session.Session) session.Session {
		qs := g.questions
		if qs == nil {
			qs = []session.InterviewQuestion{{Type: session.QuestionTechnical, Question: "q1"}}
		}
		return s.WithInterviewQuestions(qs)
	})
}

func (g *fakeGen) GradeAnswer(ctx context.Context, s session.Session, kind session.AnswerKind, idx int, answer string) (session.Session, error) {
	return g.stage("grade", s, func(s session.Session) session.Session {
		out, _ := s.WithAnswer(kind, session.AnswerRecord{QuestionIndex: idx, Answer: answer})
		return out
	})
}

func (g *fakeGen) SuggestCandidateQuestions(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("candidate", s, func(s session.Session) session.Session {
		return s.WithCandidateQuestions([]string{"Какой стек у команды?"})
	})
}

func (g *fakeGen) NextMockQuestion(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("mock-question", s, func(s session.Session) session.Session {
		return s.WithUtterance(session.Utterance{Speaker: session.SpeakerInterviewer, Text: "Расскажите о себе"})
	})
}

func (g *fakeGen) MockFeedback(ctx context.Context, s session.Session) (session.Session, error) {
	return g.stage("mock-feedback", s, func(s session.Session) session.Session {
		return s.WithMockFeedback("хорошо")
	})
}

func newTestEngine(t *testing.T) (*Engine, *fakeGen, *history.Store) {
	t.Helper()
	gen := newFakeGen()
	hist := history.NewStore(kv.NewMemoryStore())
	return New(gen, hist), gen, hist
}

// withInputs доводит сессию до состояния «резюме и вакансия загружены».
func withInputs(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.StartSession(testEmail)
	require.NoError(t, err)
	_, err = e.SetResumeText(testEmail, "Go developer, Docker, PostgreSQL")
	require.NoError(t, err)
	_, err = e.SetJobDescription(testEmail, "Golang, Kubernetes", "https://example.com/job")
	require.NoError(t, err)
}

func TestStartSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	st, err := e.StartSession(testEmail)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepLanding, st.Step)
	assert.False(t, st.ShowBar)
	assert.NotEqual(t, "", st.Session.ID.String())

	// повторный старт даёт свежую сессию
	st2, err := e.StartSession(testEmail)
	require.NoError(t, err)
	assert.NotEqual(t, st.Session.ID, st2.Session.ID)
}

func TestCurrentWithoutSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Current("nobody@example.com")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUploadResumeRejectsUnsupportedFile(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.StartSession(testEmail)
	require.NoError(t, err)

	st, err := e.UploadResume(testEmail, "resume.exe", "application/octet-stream", []byte{0x4d, 0x5a})
	assert.ErrorIs(t, err, document.ErrParse)
	assert.NotEmpty(t, st.LastError)
	assert.Empty(t, st.Session.ResumeText)
}

func TestValidationBlocksNavigationBeforeModelCall(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	_, err := e.StartSession(testEmail)
	require.NoError(t, err)
	_, err = e.NavigateTo(context.Background(), testEmail, workflow.StepUpload)
	require.NoError(t, err)
	_, err = e.SetResumeText(testEmail, "Go developer")
	require.NoError(t, err)
	_, err = e.NavigateTo(context.Background(), testEmail, workflow.StepJobDescription)
	require.NoError(t, err)

	// вакансия не заполнена: переход на анализ отклоняется без вызова модели
	st, err := e.NavigateTo(context.Background(), testEmail, workflow.StepAnalysis)
	var validation ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, workflow.StepJobDescription, st.Step)
	assert.Zero(t, gen.count("analyze"))
}

func TestForbiddenEdgeSkipsStageAndKeepsSession(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	withInputs(t, e)

	// с landing прыжок сразу в cover-letter запрещён: стадия генерации
	// писем не запускается, сессия не меняется
	st, err := e.NavigateTo(context.Background(), testEmail, workflow.StepCoverLetter)
	require.ErrorIs(t, err, workflow.ErrTransition)
	assert.Equal(t, workflow.StepLanding, st.Step)
	assert.Zero(t, gen.count("letters"))
	assert.Empty(t, st.Session.CoverLetters)

	// неизвестный шаг отклоняется так же рано
	st, err = e.NavigateTo(context.Background(), testEmail, workflow.Step("nonsense"))
	require.ErrorIs(t, err, workflow.ErrUnknownStep)
	assert.Equal(t, workflow.StepLanding, st.Step)
	assert.Zero(t, gen.count("analyze"))
}

func TestNavigateRunsMissingStageOnce(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	withInputs(t, e)
	_, err := e.NavigateTo(context.Background(), testEmail, workflow.StepUpload)
	require.NoError(t, err)
	_, err = e.NavigateTo(context.Background(), testEmail, workflow.StepJobDescription)
	require.NoError(t, err)

	st, err := e.NavigateTo(context.Background(), testEmail, workflow.StepAnalysis)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepAnalysis, st.Step)
	require.NotNil(t, st.Session.FitAnalysis)
	assert.Equal(t, 1, gen.count("analyze"))

	// возврат и повторный заход: анализ уже есть, модель не дёргается
	_, err = e.GoBack(testEmail)
	require.NoError(t, err)
	_, err = e.NavigateTo(context.Background(), testEmail, workflow.StepAnalysis)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.count("analyze"))
}

func TestStageErrorKeepsStepAndSession(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	withInputs(t, e)
	_, err := e.NavigateTo(context.Background(), testEmail, workflow.StepUpload)
	require.NoError(t, err)
	_, err = e.NavigateTo(context.Background(), testEmail, workflow.StepJobDescription)
	require.NoError(t, err)

	gen.err = errors.New("модель недоступна")
	st, err := e.NavigateTo(context.Background(), testEmail, workflow.StepAnalysis)
	require.Error(t, err)
	assert.Equal(t, workflow.StepJobDescription, st.Step)
	assert.Nil(t, st.Session.FitAnalysis)
	assert.NotEmpty(t, st.LastError)

	// после восстановления модели переход проходит
	gen.err = nil
	st, err = e.NavigateTo(context.Background(), testEmail, workflow.StepAnalysis)
	require.NoError(t, err)
	assert.Equal(t, workflow.StepAnalysis, st.Step)
	assert.Empty(t, st.LastError)
}

func TestBusyRejectsConcurrentOperations(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	withInputs(t, e)

	gen.block = make(chan struct{})
	gen.started = make(chan struct{})
	started := gen.started

	done := make(chan error, 1)
	go func() {
		_, err := e.AnalyzeFit(context.Background(), testEmail)
		done <- err
	}()
	<-started

	// пока стадия в полёте, все операции над сессией отклоняются
	_, err := e.GenerateResumes(context.Background(), testEmail)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = e.SetResumeText(testEmail, "другой текст")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = e.StartSession(testEmail)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = e.GoBack(testEmail)
	assert.ErrorIs(t, err, ErrBusy)

	// снимок состояния доступен и показывает busy
	st, err := e.Current(testEmail)
	require.NoError(t, err)
	assert.True(t, st.Busy)

	close(gen.block)
	require.NoError(t, <-done)

	st, err = e.Current(testEmail)
	require.NoError(t, err)
	assert.False(t, st.Busy)
	require.NotNil(t, st.Session.FitAnalysis)
}

func TestGradeAnswerValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	withInputs(t, e)
	_, err := e.GenerateQuestions(context.Background(), testEmail)
	require.NoError(t, err)

	_, err = e.GradeAnswer(context.Background(), testEmail, session.AnswerWritten, 0, "   ")
	var validation ErrValidation
	assert.ErrorAs(t, err, &validation)

	st, err := e.GradeAnswer(context.Background(), testEmail, session.AnswerWritten, 0, "ответ")
	require.NoError(t, err)
	require.Len(t, st.Session.WrittenAnswers, 1)
}

func TestMockFeedbackRequiresTranscript(t *testing.T) {
	e, gen, _ := newTestEngine(t)
	withInputs(t, e)

	_, err := e.MockFeedback(context.Background(), testEmail)
	var validation ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Zero(t, gen.count("mock-feedback"))

	_, err = e.AddCandidateUtterance(testEmail, "Здравствуйте")
	require.NoError(t, err)
	st, err := e.MockFeedback(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, "хорошо", st.Session.MockFeedback)
}

func TestFinishAndLoadFromHistory(t *testing.T) {
	e, _, hist := newTestEngine(t)
	withInputs(t, e)
	_, err := e.AnalyzeFit(context.Background(), testEmail)
	require.NoError(t, err)
	st, err := e.Current(testEmail)
	require.NoError(t, err)
	savedID := st.Session.ID

	_, err = e.Finish(context.Background(), testEmail)
	require.NoError(t, err)

	entries, err := hist.List(context.Background(), testEmail)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, savedID, entries[0].Session.ID)

	// новая сессия, затем возврат к сохранённой
	_, err = e.StartSession(testEmail)
	require.NoError(t, err)
	loaded, err := e.LoadFromHistory(context.Background(), testEmail, savedID)
	require.NoError(t, err)
	assert.Equal(t, savedID, loaded.Session.ID)
	assert.Equal(t, workflow.StepDashboard, loaded.Step)
	require.NotNil(t, loaded.Session.FitAnalysis)
}

func TestLoadFromHistoryUnknownID(t *testing.T) {
	e, _, _ := newTestEngine(t)
	withInputs(t, e)
	_, err := e.LoadFromHistory(context.Background(), testEmail, session.New().ID)
	assert.ErrorIs(t, err, history.ErrEntryNotFound)
}

func TestDismissError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.StartSession(testEmail)
	require.NoError(t, err)

	st, err := e.SetResumeText(testEmail, "   ")
	require.Error(t, err)
	assert.NotEmpty(t, st.LastError)

	st, err = e.DismissError(testEmail)
	require.NoError(t, err)
	assert.Empty(t, st.LastError)
}

func TestHistoryIsolationBetweenUsers(t *testing.T) {
	e, _, hist := newTestEngine(t)
	withInputs(t, e)
	_, err := e.Finish(context.Background(), testEmail)
	require.NoError(t, err)

	other, err := hist.List(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.Empty(t, other)
}
