package generation

import (
	"fmt"
	"strings"

	"github.com/artem13815/copilot/pkg/session"
)

const systemPrompt = "Ты карьерный консультант. Отвечай на языке кандидата. " +
	"Верни результат СТРОГО в JSON без markdown/код-блоков/пояснений. " +
	"Пустые массивы всегда возвращай как [], не null. Не выдумывай факты."

const systemPromptText = "Ты карьерный консультант и опытный интервьюер. " +
	"Отвечай на языке кандидата, по делу, без воды."

func sourcesBlock(s session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Текст резюме:\n<<<\n%s\n>>>\n\n", s.ResumeText)
	fmt.Fprintf(&b, "Описание вакансии:\n<<<\n%s\n>>>\n", s.JobDescription)
	if s.JobURL != "" {
		fmt.Fprintf(&b, "Ссылка на вакансию: %s\n", s.JobURL)
	}
	return b.String()
}

func fitAnalysisPrompt(s session.Session) string {
	return sourcesBlock(s) + `
Оцени соответствие резюме вакансии:
- matchScore: общий балл 0-100
- keywords: ключевые термины вакансии (10-20 штук)
- missingKeywords: термины вакансии, которых нет в резюме
- formattingIssues: проблемы оформления резюме
- skillGaps: недостающие навыки/компетенции
- recommendations: конкретные правки (priority: high|medium|low, suggestion, location — где именно в резюме)
`
}

func resumeVariantsPrompt(s session.Session, n int) string {
	return sourcesBlock(s) + fmt.Sprintf(`
Сгенерируй %d варианта резюме, оптимизированных под эту вакансию.
Каждый вариант — самостоятельный полный текст резюме с говорящим именем
(name), например: "Акцент на опыт", "Акцент на навыки", "Компактный".
Используй только факты из исходного резюме.
`, n)
}

func coverLettersPrompt(s session.Session, n int) string {
	return sourcesBlock(s) + fmt.Sprintf(`
Сгенерируй %d варианта сопроводительного письма под эту вакансию.
Каждый вариант — полный текст письма с говорящим именем (name),
например: "Формальный", "Личный", "Короткий".
Опирайся только на факты из резюме.
`, n)
}

func interviewQuestionsPrompt(s session.Session, n int) string {
	return sourcesBlock(s) + fmt.Sprintf(`
Составь %d вопросов для подготовки к интервью на эту вакансию.
Смешай типы: behavioral, technical, situational.
Для каждого вопроса дай rationale — почему его, скорее всего, зададут.
`, n)
}

func gradeAnswerPrompt(s session.Session, q session.InterviewQuestion, answer string, verbal bool) string {
	mode := "письменный"
	if verbal {
		mode = "устный (расшифровка речи: не снижай оценку за оговорки и пунктуацию)"
	}
	return fmt.Sprintf(`Вопрос интервью (%s):
%s

Ответ кандидата (%s):
<<<
%s
>>>

Контекст вакансии:
<<<
%s
>>>

Оцени ответ: score 0-100, strengths, improvements,
revisedAnswer — улучшенная версия ответа, detail — развёрнутый разбор.
`, q.Type, q.Question, mode, answer, s.JobDescription)
}

func candidateQuestionsPrompt(s session.Session, n int) string {
	return sourcesBlock(s) + fmt.Sprintf(`
Предложи %d сильных вопросов, которые кандидату стоит задать интервьюеру
на этой позиции. Только сами вопросы, без пояснений.
`, n)
}

func mockFeedbackPrompt(s session.Session) string {
	var b strings.Builder
	b.WriteString("Транскрипт мок-интервью:\n<<<\n")
	for _, u := range s.MockTranscript {
		role := "Интервьюер"
		if u.Speaker == session.SpeakerCandidate {
			role = "Кандидат"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, u.Text)
	}
	b.WriteString(">>>\n\nКонтекст вакансии:\n<<<\n")
	b.WriteString(s.JobDescription)
	b.WriteString("\n>>>\n\nДай кандидату развёрнутую обратную связь по итогам интервью: сильные стороны, слабые места, конкретные советы. Обычным текстом, списками.")
	return b.String()
}

func mockQuestionPrompt(s session.Session) string {
	var b strings.Builder
	b.WriteString(sourcesBlock(s))
	if len(s.MockTranscript) > 0 {
		b.WriteString("\nТранскрипт интервью на данный момент:\n<<<\n")
		for _, u := range s.MockTranscript {
			role := "Интервьюер"
			if u.Speaker == session.SpeakerCandidate {
				role = "Кандидат"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, u.Text)
		}
		b.WriteString(">>>\n")
	}
	b.WriteString("\nТы ведёшь мок-интервью по этой вакансии. Задай следующий вопрос кандидату. Только сам вопрос, одной-двумя фразами.")
	return b.String()
}
