package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/copilot/pkg/kv"
	"github.com/artem13815/copilot/pkg/session"
)

// ErrEntryNotFound — в истории нет сессии с таким идентификатором.
var ErrEntryNotFound = errors.New("history entry not found")

// Store персистит историю пользователя под ключом history:<email>.
// Update/Delete снаружи нет; повторное сохранение той же сессии заменяет
// прежнюю запись по её идентификатору и поднимает её наверх — история не
// накапливает дубликаты одного прохода.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func historyKey(email string) string {
	return "history:" + strings.ToLower(strings.TrimSpace(email))
}

// Append сохраняет сессию в историю пользователя, новейшие записи первыми.
func (s *Store) Append(ctx context.Context, email string, sess session.Session) error {
	entries, err := s.List(ctx, email)
	if err != nil {
		return err
	}
	// upsert по id сессии
	filtered := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Session.ID != sess.ID {
			filtered = append(filtered, e)
		}
	}
	entries = append([]Entry{{Session: sess.Clone(), SavedAt: time.Now().UTC()}}, filtered...)

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, historyKey(email), string(data))
}

// List возвращает историю пользователя, новейшие записи первыми.
// Отсутствие ключа — пустая история, не ошибка.
func (s *Store) List(ctx context.Context, email string) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, historyKey(email))
	if errors.Is(err, kv.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("corrupt history record: %w", err)
	}
	return entries, nil
}

// Get возвращает запись истории по идентификатору сессии.
func (s *Store) Get(ctx context.Context, email string, id uuid.UUID) (Entry, error) {
	entries, err := s.List(ctx, email)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Session.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}
