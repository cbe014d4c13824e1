package history

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/copilot/pkg/kv"
	"github.com/artem13815/copilot/pkg/session"
)

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	first := session.New().WithSourceResume("первое резюме", "a.txt")
	second := session.New().WithSourceResume("второе резюме", "b.txt")

	require.NoError(t, store.Append(ctx, "user@example.com", first))
	require.NoError(t, store.Append(ctx, "user@example.com", second))

	entries, err := store.List(ctx, "user@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// новейшие записи первыми
	assert.Equal(t, second.ID, entries[0].Session.ID)
	assert.Equal(t, first.ID, entries[1].Session.ID)
}

func TestAppendUpsertsBySessionID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	s := session.New().WithSourceResume("v1", "a.txt")
	other := session.New()
	require.NoError(t, store.Append(ctx, "user@example.com", s))
	require.NoError(t, store.Append(ctx, "user@example.com", other))

	// повторное сохранение того же прохода заменяет запись и поднимает её наверх
	require.NoError(t, store.Append(ctx, "user@example.com", s.WithSourceResume("v2", "a.txt")))

	entries, err := store.List(ctx, "user@example.com")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, s.ID, entries[0].Session.ID)
	assert.Equal(t, "v2", entries[0].Session.ResumeText)
}

func TestListEmptyHistory(t *testing.T) {
	store := NewStore(kv.NewMemoryStore())
	entries, err := store.List(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	s := session.New()
	require.NoError(t, store.Append(ctx, "user@example.com", s))

	entry, err := store.Get(ctx, "user@example.com", s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, entry.Session.ID)
	assert.False(t, entry.SavedAt.IsZero())

	_, err = store.Get(ctx, "user@example.com", uuid.New())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPerUserIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemoryStore())

	require.NoError(t, store.Append(ctx, "a@example.com", session.New()))

	entries, err := store.List(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// ключ истории нормализует email
	entries, err = store.List(ctx, "  A@Example.com ")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
