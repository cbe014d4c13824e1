package engine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/copilot/pkg/document"
	"github.com/artem13815/copilot/pkg/generation"
	"github.com/artem13815/copilot/pkg/history"
	"github.com/artem13815/copilot/pkg/session"
	"github.com/artem13815/copilot/pkg/workflow"
)

// Ошибки движка.
var (
	// ErrBusy — для сессии уже идёт генерация; повторные запросы генерации
	// и навигация отклоняются, а не ставятся в очередь.
	ErrBusy = errors.New("generation in progress")
	// ErrNoSession — у пользователя нет активной сессии.
	ErrNoSession = errors.New("no active session")
)

// ErrValidation — не хватает пользовательского ввода для перехода.
// Блокирует переход до любого вызова модели.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// State — снимок состояния workflow одного пользователя.
type State struct {
	Session   session.Session
	Step      workflow.Step
	Progress  int
	ShowBar   bool
	Busy      bool
	LastError string
}

// Engine держит активную сессию и навигационную машину на каждого
// аутентифицированного пользователя. Все операции над одной сессией
// сериализованы; на время стадии генерации сессия помечается busy,
// и любые другие операции над ней отклоняются с ErrBusy.
type Engine struct {
	mu      sync.Mutex
	gen     generation.UseCase
	history *history.Store
	active  map[string]*userState
}

type userState struct {
	machine *workflow.Machine
	session session.Session
	busy    bool
	lastErr string
}

func New(gen generation.UseCase, hist *history.Store) *Engine {
	return &Engine{
		gen:     gen,
		history: hist,
		active:  make(map[string]*userState),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StartSession сбрасывает активное состояние пользователя: свежая сессия,
// машина на шаге landing, пустой стек возврата.
func (e *Engine) StartSession(email string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := normalizeEmail(email)
	if st, ok := e.active[key]; ok && st.busy {
		return State{}, ErrBusy
	}
	st := &userState{
		machine: workflow.NewMachine(),
		session: session.New(),
	}
	e.active[key] = st
	return e.snapshot(st), nil
}

// Current возвращает снимок состояния пользователя.
func (e *Engine) Current(email string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.active[normalizeEmail(email)]
	if !ok {
		return State{}, ErrNoSession
	}
	return e.snapshot(st), nil
}

func (e *Engine) snapshot(st *userState) State {
	percent, shown := st.machine.Progress()
	return State{
		Session:   st.session.Clone(),
		Step:      st.machine.Current(),
		Progress:  percent,
		ShowBar:   shown,
		Busy:      st.busy,
		LastError: st.lastErr,
	}
}

// locked достаёт состояние и проверяет busy. Вызывать под e.mu.
func (e *Engine) locked(email string) (*userState, error) {
	st, ok := e.active[normalizeEmail(email)]
	if !ok {
		return nil, ErrNoSession
	}
	if st.busy {
		return nil, ErrBusy
	}
	return st, nil
}

// UploadResume извлекает текст из загруженного файла и кладёт его в сессию.
func (e *Engine) UploadResume(email, filename, mime string, data []byte) (State, error) {
	text, err := document.ExtractText(mime, data)
	if err != nil {
		return e.fail(email, err)
	}
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithSourceResume(text, filename), nil
	})
}

// SetResumeText принимает резюме, вставленное сырым текстом.
func (e *Engine) SetResumeText(email, text string) (State, error) {
	if strings.TrimSpace(text) == "" {
		return e.fail(email, ErrValidation("пустой текст резюме"))
	}
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithSourceResume(text, ""), nil
	})
}

// SetJobDescription принимает описание вакансии и опциональный URL.
func (e *Engine) SetJobDescription(email, description, url string) (State, error) {
	if strings.TrimSpace(description) == "" {
		return e.fail(email, ErrValidation("пустое описание вакансии"))
	}
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithJobDescription(description, url), nil
	})
}

// EditArtifact правит содержимое варианта артефакта на месте.
func (e *Engine) EditArtifact(email string, cover bool, index int, content string) (State, error) {
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithArtifactEdit(cover, index, content)
	})
}

// SelectArtifact выбирает вариант артефакта.
func (e *Engine) SelectArtifact(email string, cover bool, index int) (State, error) {
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithSelected(cover, index)
	})
}

// AddCandidateUtterance добавляет реплику кандидата в транскрипт
// мок-интервью (расшифровка речи приходит готовым текстом).
func (e *Engine) AddCandidateUtterance(email, text string) (State, error) {
	if strings.TrimSpace(text) == "" {
		return e.fail(email, ErrValidation("пустая реплика"))
	}
	return e.mutate(email, func(s session.Session) (session.Session, error) {
		return s.WithUtterance(session.Utterance{
			Speaker: session.SpeakerCandidate,
			Text:    text,
		}), nil
	})
}

// mutate выполняет не-AI мутацию сессии под замком.
// При ошибке сессия остаётся прежней, ошибка попадает в слот.
func (e *Engine) mutate(email string, fn func(session.Session) (session.Session, error)) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.locked(email)
	if err != nil {
		return State{}, err
	}
	next, err := fn(st.session)
	if err != nil {
		st.lastErr = err.Error()
		return e.snapshot(st), err
	}
	st.session = next
	return e.snapshot(st), nil
}

// NavigateTo переводит workflow на целевой шаг. Если шагу нужны ещё не
// сгенерированные данные, сперва выполняется соответствующая стадия
// пайплайна; при её ошибке переход не фиксируется и шаг не меняется.
// Ребро проверяется до стадии: запрещённый переход не тратит вызов модели.
func (e *Engine) NavigateTo(ctx context.Context, email string, target workflow.Step) (State, error) {
	if err := e.checkEdge(email, target); err != nil {
		return e.fail(email, err)
	}
	if err := e.requireInputs(email, target); err != nil {
		return e.fail(email, err)
	}
	if stage := e.stageFor(email, target); stage != nil {
		if _, err := e.runStage(ctx, email, stage); err != nil {
			st, _ := e.Current(email)
			return st, err
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.locked(email)
	if err != nil {
		return State{}, err
	}
	if err := st.machine.NavigateTo(target); err != nil {
		st.lastErr = err.Error()
		return e.snapshot(st), err
	}
	return e.snapshot(st), nil
}

// checkEdge проверяет ребро навигации без фиксации перехода.
func (e *Engine) checkEdge(email string, target workflow.Step) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.locked(email)
	if err != nil {
		return err
	}
	return st.machine.CheckNavigate(target)
}

// requireInputs проверяет пользовательский ввод, обязательный для шага.
// Срабатывает до любого вызова модели.
func (e *Engine) requireInputs(email string, target workflow.Step) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.locked(email)
	if err != nil {
		return err
	}
	s := st.session
	switch target {
	case workflow.StepJobDescription:
		if strings.TrimSpace(s.ResumeText) == "" {
			return ErrValidation("сначала загрузите резюме")
		}
	case workflow.StepAnalysis, workflow.StepDashboard:
		if strings.TrimSpace(s.ResumeText) == "" {
			return ErrValidation("сначала загрузите резюме")
		}
		if strings.TrimSpace(s.JobDescription) == "" {
			return ErrValidation("сначала добавьте описание вакансии")
		}
	}
	return nil
}

// stageFor возвращает стадию генерации, необходимую для входа на шаг,
// если её данные ещё не получены.
func (e *Engine) stageFor(email string, target workflow.Step) func(context.Context, session.Session) (session.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.active[normalizeEmail(email)]
	if !ok {
		return nil
	}
	s := st.session
	switch target {
	case workflow.StepAnalysis:
		if s.FitAnalysis == nil {
			return e.gen.AnalyzeFit
		}
	case workflow.StepCoverLetter:
		if len(s.CoverLetters) == 0 {
			return e.gen.GenerateCoverLetters
		}
	case workflow.StepWrittenPractice, workflow.StepVerbalPractice:
		if len(s.InterviewQuestions) == 0 {
			return e.gen.GenerateQuestions
		}
	case workflow.StepCandidateQuestions:
		if len(s.CandidateQuestions) == 0 {
			return e.gen.SuggestCandidateQuestions
		}
	}
	return nil
}

// GoBack откатывает навигацию на предыдущий шаг. На пустом стеке — no-op.
func (e *Engine) GoBack(email string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.locked(email)
	if err != nil {
		return State{}, err
	}
	st.machine.GoBack()
	return e.snapshot(st), nil
}

// AnalyzeFit запускает (пере)анализ соответствия.
func (e *Engine) AnalyzeFit(ctx context.Context, email string) (State, error) {
	if err := e.requireInputs(email, workflow.StepAnalysis); err != nil {
		return e.fail(email, err)
	}
	return e.runStage(ctx, email, e.gen.AnalyzeFit)
}

// GenerateResumes генерирует свежий батч вариантов резюме.
func (e *Engine) GenerateResumes(ctx context.Context, email string) (State, error) {
	return e.runStage(ctx, email, e.gen.GenerateResumes)
}

// GenerateCoverLetters генерирует свежий батч сопроводительных писем.
func (e *Engine) GenerateCoverLetters(ctx context.Context, email string) (State, error) {
	return e.runStage(ctx, email, e.gen.GenerateCoverLetters)
}

// GenerateQuestions генерирует свежий батч вопросов интервью.
func (e *Engine) GenerateQuestions(ctx context.Context, email string) (State, error) {
	return e.runStage(ctx, email, e.gen.GenerateQuestions)
}

// GradeAnswer оценивает ответ кандидата и апсертит запись по индексу вопроса.
func (e *Engine) GradeAnswer(ctx context.Context, email string, kind session.AnswerKind, questionIndex int, answer string) (State, error) {
	if strings.TrimSpace(answer) == "" {
		return e.fail(email, ErrValidation("пустой ответ"))
	}
	return e.runStage(ctx, email, func(ctx context.Context, s session.Session) (session.Session, error) {
		return e.gen.GradeAnswer(ctx, s, kind, questionIndex, answer)
	})
}

// SuggestCandidateQuestions генерирует вопросы кандидата интервьюеру.
func (e *Engine) SuggestCandidateQuestions(ctx context.Context, email string) (State, error) {
	return e.runStage(ctx, email, e.gen.SuggestCandidateQuestions)
}

// NextMockQuestion просит модель задать следующий вопрос мок-интервью.
func (e *Engine) NextMockQuestion(ctx context.Context, email string) (State, error) {
	return e.runStage(ctx, email, e.gen.NextMockQuestion)
}

// MockFeedback формирует обратную связь по транскрипту мок-интервью.
func (e *Engine) MockFeedback(ctx context.Context, email string) (State, error) {
	e.mu.Lock()
	st, ok := e.active[normalizeEmail(email)]
	empty := ok && len(st.session.MockTranscript) == 0
	e.mu.Unlock()
	if empty {
		return e.fail(email, ErrValidation("транскрипт мок-интервью пуст"))
	}
	return e.runStage(ctx, email, e.gen.MockFeedback)
}

// runStage выполняет одну стадию пайплайна. Пока стадия в полёте, сессия
// помечена busy и все прочие операции над ней отклоняются — поэтому
// результат можно мержить без проверки, что состояние «уехало».
func (e *Engine) runStage(ctx context.Context, email string, stage func(context.Context, session.Session) (session.Session, error)) (State, error) {
	e.mu.Lock()
	st, err := e.locked(email)
	if err != nil {
		e.mu.Unlock()
		return State{}, err
	}
	st.busy = true
	snapshot := st.session.Clone()
	e.mu.Unlock()

	next, stageErr := stage(ctx, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	st.busy = false
	if stageErr != nil {
		st.lastErr = stageErr.Error()
		return e.snapshot(st), stageErr
	}
	st.session = next
	st.lastErr = ""
	return e.snapshot(st), nil
}

// Finish сохраняет сессию в историю пользователя.
func (e *Engine) Finish(ctx context.Context, email string) (State, error) {
	e.mu.Lock()
	st, err := e.locked(email)
	if err != nil {
		e.mu.Unlock()
		return State{}, err
	}
	snapshot := st.session.Clone()
	e.mu.Unlock()

	if err := e.history.Append(ctx, email, snapshot); err != nil {
		return e.fail(email, err)
	}
	return e.Current(email)
}

// LoadFromHistory заменяет активную сессию записью из истории целиком;
// машина встаёт на дашборд со свежим стеком возврата.
func (e *Engine) LoadFromHistory(ctx context.Context, email string, id uuid.UUID) (State, error) {
	entry, err := e.history.Get(ctx, email, id)
	if err != nil {
		return e.fail(email, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	key := normalizeEmail(email)
	if st, ok := e.active[key]; ok && st.busy {
		return State{}, ErrBusy
	}
	machine := workflow.NewMachine()
	_ = machine.NavigateTo(workflow.StepHistory)
	_ = machine.NavigateTo(workflow.StepDashboard)
	st := &userState{
		machine: machine,
		session: entry.Session.Clone(),
	}
	e.active[key] = st
	return e.snapshot(st), nil
}

// DismissError очищает слот последней ошибки, не трогая сессию.
func (e *Engine) DismissError(email string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.active[normalizeEmail(email)]
	if !ok {
		return State{}, ErrNoSession
	}
	st.lastErr = ""
	return e.snapshot(st), nil
}

// fail пишет ошибку в слот состояния (если оно есть) и возвращает её.
func (e *Engine) fail(email string, err error) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.active[normalizeEmail(email)]
	if !ok {
		return State{}, err
	}
	st.lastErr = err.Error()
	return e.snapshot(st), err
}
