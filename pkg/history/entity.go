package history

import (
	"time"

	"github.com/artem13815/copilot/pkg/session"
)

// Entry — завершённая сессия, сохранённая за пользователем.
// После записи не мутируется.
type Entry struct {
	Session session.Session `json:"session"`
	SavedAt time.Time       `json:"savedAt"`
}
