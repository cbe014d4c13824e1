package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copilot/pkg/kv"
)

func TestLoadOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	created, err := store.LoadOrCreate(ctx, "Ivan@Example.COM", "Иван")
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", created.Email)
	assert.Equal(t, "Иван", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	// повторный вход возвращает ту же запись
	loaded, err := store.LoadOrCreate(ctx, "ivan@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, created.Email, loaded.Email)
	assert.Equal(t, "Иван", loaded.Name)
	assert.Equal(t, created.CreatedAt.Unix(), loaded.CreatedAt.Unix())
}

func TestLoadOrCreateUpdatesName(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	_, err := store.LoadOrCreate(ctx, "ivan@example.com", "Иван")
	require.NoError(t, err)

	updated, err := store.LoadOrCreate(ctx, "ivan@example.com", "Иван Петров")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", updated.Name)

	// обновление сохранилось
	loaded, err := store.LoadOrCreate(ctx, "ivan@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", loaded.Name)
}

func TestLoadOrCreateInvalidEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := store.LoadOrCreate(ctx, email, "x")
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}
