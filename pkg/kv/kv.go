package kv

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Store — порт key-value персистентности. Значения — сериализованный JSON,
// схемы версионирования нет: читающая сторона обязана распарсить текст сама
// и корректно обработать отсутствие ключа.
// Implementations may be in-memory, SQL, Redis, etc.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
