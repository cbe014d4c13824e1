package workflow

// Step — одно именованное состояние навигационного графа.
type Step string

const (
	StepLanding            Step = "landing"
	StepUpload             Step = "upload"
	StepJobDescription     Step = "job-description"
	StepAnalysis           Step = "analysis"
	StepDashboard          Step = "dashboard"
	StepCoverLetter        Step = "cover-letter"
	StepWrittenPractice    Step = "written-practice"
	StepVerbalPractice     Step = "verbal-practice"
	StepCandidateQuestions Step = "candidate-questions"
	StepMockInterview      Step = "mock-interview"
	StepSummary            Step = "summary"
	StepHistory            Step = "history"
)

// Valid сообщает, входит ли шаг в закрытое множество.
func (s Step) Valid() bool {
	_, ok := progress[s]
	if ok {
		return true
	}
	switch s {
	case StepLanding, StepHistory:
		return true
	}
	return false
}

// modules — практические модули, доступные с дашборда.
var modules = []Step{
	StepCoverLetter,
	StepWrittenPractice,
	StepVerbalPractice,
	StepCandidateQuestions,
	StepMockInterview,
}

// edges — таблица разрешённых переходов. Граф направленный: линейная
// «счастливая тропа» до дашборда, дальше дашборд работает хабом модулей.
// История достижима отовсюду.
var edges = map[Step][]Step{
	StepLanding:        {StepUpload, StepHistory},
	StepUpload:         {StepJobDescription, StepLanding, StepHistory},
	StepJobDescription: {StepAnalysis, StepUpload, StepHistory},
	StepAnalysis:       {StepDashboard, StepJobDescription, StepHistory},
	StepDashboard: append([]Step{StepSummary, StepAnalysis, StepHistory},
		modules...),
	StepSummary: {StepDashboard, StepLanding, StepHistory},
	StepHistory: {StepLanding, StepDashboard},
}

func init() {
	// Каждый модуль: назад на дашборд, вперёд на итог, в историю,
	// и напрямую в любой другой модуль.
	for _, m := range modules {
		targets := []Step{StepDashboard, StepSummary, StepHistory}
		for _, other := range modules {
			if other != m {
				targets = append(targets, other)
			}
		}
		edges[m] = targets
	}
}

// Allowed проверяет переход from -> to по таблице рёбер.
func Allowed(from, to Step) bool {
	for _, t := range edges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// progress — процент прохождения канонической тропы. Модули делят одну
// отметку: внутри дашборда порядок их посещения произвольный.
var progress = map[Step]int{
	StepUpload:             15,
	StepJobDescription:     30,
	StepAnalysis:           45,
	StepDashboard:          60,
	StepCoverLetter:        75,
	StepWrittenPractice:    75,
	StepVerbalPractice:     75,
	StepCandidateQuestions: 75,
	StepMockInterview:      75,
	StepSummary:            100,
}

// Progress возвращает процент прогресса для шага и флаг показа.
// Для landing и history индикатор прогресса не отображается.
func Progress(step Step) (percent int, shown bool) {
	if step == StepLanding || step == StepHistory {
		return 0, false
	}
	return progress[step], true
}
