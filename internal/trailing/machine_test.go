package trailing

import (
	"testing"

	"github.com/Alias1177/KuFutures/internal/model"
)

func TestMachineLongMonotonic(t *testing.T) {
	m := NewMachine(model.Long, 100, 0, 0)
	if m.State() != StateActive {
		t.Fatalf("State = %v, want ACTIVE при нулевой активации", m.State())
	}

	if ev := m.Tick(102, 100); ev != EventStopMoved {
		t.Errorf("первый тик: event = %v, want STOP_MOVED", ev)
	}
	if m.Stop() != 100 {
		t.Errorf("Stop = %v, want 100", m.Stop())
	}

	if ev := m.Tick(104, 102); ev != EventStopMoved || m.Stop() != 102 {
		t.Errorf("рост цены: event = %v, stop = %v", ev, m.Stop())
	}

	// Откат не ослабляет стоп.
	if ev := m.Tick(103.5, 101); ev != EventNone {
		t.Errorf("откат: event = %v, want NONE", ev)
	}
	if m.Stop() != 102 {
		t.Errorf("стоп ослаб: %v", m.Stop())
	}

	// Касание стопа завершает сессию, даже если вариант предлагает
	// новый уровень.
	if ev := m.Tick(102, 100); ev != EventStopHit {
		t.Errorf("касание: event = %v, want STOP_HIT", ev)
	}
	if m.State() != StateStoppedOut {
		t.Errorf("State = %v, want STOPPED_OUT", m.State())
	}
}

func TestMachineShortMonotonic(t *testing.T) {
	m := NewMachine(model.Short, 100, 0, 0)

	m.Tick(98, 100)
	if m.Stop() != 100 {
		t.Fatalf("Stop = %v, want 100", m.Stop())
	}

	m.Tick(96, 98)
	if m.Stop() != 98 {
		t.Errorf("Stop = %v, want 98", m.Stop())
	}

	// Для шорта "лучше" значит ниже.
	if ev := m.Tick(97, 99); ev != EventNone || m.Stop() != 98 {
		t.Errorf("стоп ослаб: event = %v, stop = %v", ev, m.Stop())
	}

	if ev := m.Tick(98, 97); ev != EventStopHit {
		t.Errorf("event = %v, want STOP_HIT", ev)
	}
}

func TestMachineActivation(t *testing.T) {
	m := NewMachine(model.Long, 100, 96, 106)
	if m.State() != StateWaiting {
		t.Fatalf("State = %v, want WAITING", m.State())
	}

	// До активации стоп не трогаем.
	if ev := m.Tick(103, 101); ev != EventNone {
		t.Errorf("event = %v, want NONE до активации", ev)
	}
	if m.Stop() != 96 {
		t.Errorf("Stop = %v, защитный стоп не должен двигаться", m.Stop())
	}

	if ev := m.Tick(106, 104); ev != EventActivated {
		t.Errorf("event = %v, want ACTIVATED", ev)
	}
	if m.State() != StateActive || m.Stop() != 104 {
		t.Errorf("после активации state = %v, stop = %v", m.State(), m.Stop())
	}

	if ev := m.Tick(108, 106); ev != EventStopMoved || m.Stop() != 106 {
		t.Errorf("трейлинг после активации: event = %v, stop = %v", ev, m.Stop())
	}
}

// Защитный стоп auto-варианта работает и в ожидании активации.
func TestMachineInitialStopHitWhileWaiting(t *testing.T) {
	m := NewMachine(model.Long, 100, 96, 106)

	if ev := m.Tick(95, 0); ev != EventStopHit {
		t.Errorf("event = %v, want STOP_HIT", ev)
	}
	if m.State() != StateStoppedOut {
		t.Errorf("State = %v, want STOPPED_OUT", m.State())
	}
}

func TestMachineTerminalStates(t *testing.T) {
	m := NewMachine(model.Long, 100, 0, 0)
	m.Tick(102, 100)
	m.Tick(99, 0) // hit

	if ev := m.Tick(200, 150); ev != EventNone {
		t.Errorf("тик в терминальном состоянии: event = %v", ev)
	}
	if m.State() != StateStoppedOut {
		t.Errorf("State = %v, терминальное состояние не должно меняться", m.State())
	}

	m.MarkClosedExternally()
	if m.State() != StateStoppedOut {
		t.Errorf("MarkClosedExternally поверх STOPPED_OUT: %v", m.State())
	}

	m2 := NewMachine(model.Short, 100, 0, 0)
	m2.MarkClosedExternally()
	if m2.State() != StateClosedExternally {
		t.Errorf("State = %v, want POSITION_CLOSED_EXTERNALLY", m2.State())
	}
	if !m2.State().Terminal() {
		t.Error("POSITION_CLOSED_EXTERNALLY должен быть терминальным")
	}
}
