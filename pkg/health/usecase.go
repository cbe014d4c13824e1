package health

import (
	"context"
	"fmt"
)

// Checker — проверка одной внешней зависимости (БД, Redis).
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
}

type service struct {
	checkers []Checker
}

// NewService собирает readiness-проверку из переданных чекеров.
// Без чекеров (memory-драйвер) сервис всегда готов.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

// Ready опрашивает зависимости по очереди и останавливается на первой
// упавшей, называя её в ошибке.
func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ch.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return nil
}
