package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artem13815/copilot/pkg/kv"
)

// ErrInvalidEmail — пустой или заведомо некорректный email.
var ErrInvalidEmail = errors.New("invalid email")

// Store персистит Identity в key-value хранилище под ключом identity:<email>.
// Явный сервисный объект вместо глобального состояния: создаётся один раз
// на процесс и передаётся в workflow.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func identityKey(email string) string {
	return "identity:" + strings.ToLower(strings.TrimSpace(email))
}

// LoadOrCreate возвращает сохранённую Identity либо создаёт новую.
// Непустое имя в запросе обновляет сохранённое.
func (s *Store) LoadOrCreate(ctx context.Context, email, name string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, ErrInvalidEmail
	}

	raw, err := s.kv.Get(ctx, identityKey(email))
	switch {
	case err == nil:
		var ident Identity
		if err := json.Unmarshal([]byte(raw), &ident); err != nil {
			return Identity{}, fmt.Errorf("corrupt identity record: %w", err)
		}
		if name != "" && name != ident.Name {
			ident.Name = name
			if err := s.save(ctx, ident); err != nil {
				return Identity{}, err
			}
		}
		return ident, nil
	case errors.Is(err, kv.ErrNotFound):
		ident := Identity{
			Email:     email,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.save(ctx, ident); err != nil {
			return Identity{}, err
		}
		return ident, nil
	default:
		return Identity{}, err
	}
}

func (s *Store) save(ctx context.Context, ident Identity) error {
	data, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, identityKey(ident.Email), string(data))
}
