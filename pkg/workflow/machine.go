package workflow

import (
	"errors"
	"fmt"
)

// Ошибки переходов.
var (
	ErrUnknownStep = errors.New("unknown step")
	ErrTransition  = errors.New("transition not allowed")
)

// Machine держит текущий шаг и стек возврата. Это навигационный граф с
// линейной «счастливой тропой» поверх него, а не строгий конечный автомат:
// с дашборда разрешён прыжок в любой модуль.
type Machine struct {
	current Step
	back    []Step
}

// NewMachine создаёт машину на стартовом шаге landing с пустым стеком.
func NewMachine() *Machine {
	return &Machine{current: StepLanding}
}

// Current возвращает текущий шаг.
func (m *Machine) Current() Step { return m.current }

// CheckNavigate проверяет переход на целевой шаг, не фиксируя его.
// Переход в текущий шаг всегда разрешён (no-op при фиксации).
func (m *Machine) CheckNavigate(target Step) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, target)
	}
	if target == m.current {
		return nil
	}
	if !Allowed(m.current, target) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.current, target)
	}
	return nil
}

// NavigateTo выполняет переход по разрешённому ребру: текущий шаг уходит
// в стек возврата, целевой становится текущим.
func (m *Machine) NavigateTo(target Step) error {
	if err := m.CheckNavigate(target); err != nil {
		return err
	}
	if target == m.current {
		return nil
	}
	m.back = append(m.back, m.current)
	m.current = target
	return nil
}

// GoBack снимает последний шаг со стека и делает его текущим.
// На пустом стеке — no-op, без ошибки.
func (m *Machine) GoBack() {
	if len(m.back) == 0 {
		return
	}
	m.current = m.back[len(m.back)-1]
	m.back = m.back[:len(m.back)-1]
}

// Depth возвращает глубину стека возврата.
func (m *Machine) Depth() int { return len(m.back) }

// Progress — прогресс текущего шага.
func (m *Machine) Progress() (percent int, shown bool) {
	return Progress(m.current)
}
