package session

import (
	"errors"
	"fmt"
)

// Ошибки мутаций. Невалидная мутация оставляет исходную сессию нетронутой.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoQuestion      = errors.New("answer references a missing question")
)

// Clone возвращает глубокую копию сессии. Все With*-методы работают только
// через копию: вызывающая сторона может безопасно сравнивать до/после.
func (s Session) Clone() Session {
	out := s
	out.OptimizedResumes = append([]ArtifactVersion(nil), s.OptimizedResumes...)
	out.CoverLetters = append([]ArtifactVersion(nil), s.CoverLetters...)
	out.InterviewQuestions = append([]InterviewQuestion(nil), s.InterviewQuestions...)
	out.WrittenAnswers = cloneAnswers(s.WrittenAnswers)
	out.VerbalAnswers = cloneAnswers(s.VerbalAnswers)
	out.CandidateQuestions = append([]string(nil), s.CandidateQuestions...)
	out.MockTranscript = append([]Utterance(nil), s.MockTranscript...)
	if s.FitAnalysis != nil {
		fa := *s.FitAnalysis
		fa.MissingKeywords = append([]string(nil), s.FitAnalysis.MissingKeywords...)
		fa.KeywordDensity = append([]KeywordCount(nil), s.FitAnalysis.KeywordDensity...)
		fa.FormattingIssues = append([]string(nil), s.FitAnalysis.FormattingIssues...)
		fa.SkillGaps = append([]string(nil), s.FitAnalysis.SkillGaps...)
		fa.Recommendations = append([]Recommendation(nil), s.FitAnalysis.Recommendations...)
		out.FitAnalysis = &fa
	}
	return out
}

func cloneAnswers(in []AnswerRecord) []AnswerRecord {
	out := make([]AnswerRecord, 0, len(in))
	for _, a := range in {
		if a.Feedback != nil {
			fb := *a.Feedback
			fb.Strengths = append([]string(nil), a.Feedback.Strengths...)
			fb.Improvements = append([]string(nil), a.Feedback.Improvements...)
			a.Feedback = &fb
		}
		out = append(out, a)
	}
	return out
}

// WithSourceResume задаёт исходный текст резюме и имя файла.
func (s Session) WithSourceResume(text, filename string) Session {
	out := s.Clone()
	out.ResumeText = text
	out.ResumeFilename = filename
	return out
}

// WithJobDescription задаёт описание вакансии и опциональный URL.
func (s Session) WithJobDescription(description, url string) Session {
	out := s.Clone()
	out.JobDescription = description
	out.JobURL = url
	return out
}

// WithFitAnalysis заменяет результат анализа целиком.
func (s Session) WithFitAnalysis(fa FitAnalysis) Session {
	out := s.Clone()
	out.FitAnalysis = &fa
	return out
}

// WithOptimizedResumes заменяет список вариантов резюме целиком
// и сбрасывает выбранный индекс в 0.
func (s Session) WithOptimizedResumes(versions []ArtifactVersion) Session {
	out := s.Clone()
	out.OptimizedResumes = append([]ArtifactVersion(nil), versions...)
	out.SelectedResume = 0
	return out
}

// WithCoverLetters заменяет список сопроводительных писем целиком
// и сбрасывает выбранный индекс в 0.
func (s Session) WithCoverLetters(versions []ArtifactVersion) Session {
	out := s.Clone()
	out.CoverLetters = append([]ArtifactVersion(nil), versions...)
	out.SelectedCoverLetter = 0
	return out
}

// WithInterviewQuestions заменяет батч вопросов целиком. Ответы прежнего
// батча больше не ссылаются на существующие вопросы и тоже сбрасываются.
func (s Session) WithInterviewQuestions(questions []InterviewQuestion) Session {
	out := s.Clone()
	out.InterviewQuestions = append([]InterviewQuestion(nil), questions...)
	out.WrittenAnswers = []AnswerRecord{}
	out.VerbalAnswers = []AnswerRecord{}
	return out
}

// WithCandidateQuestions заменяет список вопросов кандидата целиком.
func (s Session) WithCandidateQuestions(questions []string) Session {
	out := s.Clone()
	out.CandidateQuestions = append([]string(nil), questions...)
	return out
}

// WithAnswer апсертит запись ответа по индексу вопроса: существующая запись
// для того же индекса удаляется, новая добавляется в конец. Порядок записей
// при повторной оценке не сохраняется.
func (s Session) WithAnswer(kind AnswerKind, rec AnswerRecord) (Session, error) {
	if rec.QuestionIndex < 0 || rec.QuestionIndex >= len(s.InterviewQuestions) {
		return s, fmt.Errorf("%w: index %d, questions %d", ErrNoQuestion, rec.QuestionIndex, len(s.InterviewQuestions))
	}
	out := s.Clone()
	list := out.WrittenAnswers
	if kind == AnswerVerbal {
		list = out.VerbalAnswers
	}
	filtered := make([]AnswerRecord, 0, len(list)+1)
	for _, a := range list {
		if a.QuestionIndex != rec.QuestionIndex {
			filtered = append(filtered, a)
		}
	}
	filtered = append(filtered, rec)
	if kind == AnswerVerbal {
		out.VerbalAnswers = filtered
	} else {
		out.WrittenAnswers = filtered
	}
	return out, nil
}

// WithArtifactEdit правит содержимое одного варианта (резюме или письма).
func (s Session) WithArtifactEdit(cover bool, index int, content string) (Session, error) {
	out := s.Clone()
	list := out.OptimizedResumes
	if cover {
		list = out.CoverLetters
	}
	if index < 0 || index >= len(list) {
		return s, fmt.Errorf("%w: artifact index %d", ErrIndexOutOfRange, index)
	}
	list[index].Content = content
	return out, nil
}

// WithSelected выбирает вариант артефакта по индексу.
func (s Session) WithSelected(cover bool, index int) (Session, error) {
	out := s.Clone()
	list := out.OptimizedResumes
	if cover {
		list = out.CoverLetters
	}
	if index < 0 || index >= len(list) {
		return s, fmt.Errorf("%w: artifact index %d", ErrIndexOutOfRange, index)
	}
	for i := range list {
		list[i].Selected = i == index
	}
	if cover {
		out.SelectedCoverLetter = index
	} else {
		out.SelectedResume = index
	}
	return out, nil
}

// WithUtterance добавляет реплику в транскрипт мок-интервью.
func (s Session) WithUtterance(u Utterance) Session {
	out := s.Clone()
	out.MockTranscript = append(out.MockTranscript, u)
	return out
}

// WithMockFeedback заменяет текст обратной связи мок-интервью.
func (s Session) WithMockFeedback(feedback string) Session {
	out := s.Clone()
	out.MockFeedback = feedback
	return out
}
