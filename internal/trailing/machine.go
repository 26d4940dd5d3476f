package trailing

import "github.com/Alias1177/KuFutures/internal/model"

// State is the lifecycle phase of one trailing session.
type State string

const (
	StateWaiting          State = "WAITING_FOR_ACTIVATION"
	StateActive           State = "TRAILING_ACTIVE"
	StateStoppedOut       State = "STOPPED_OUT"
	StateClosedExternally State = "POSITION_CLOSED_EXTERNALLY"
)

// Terminal reports whether the session is finished.
func (s State) Terminal() bool {
	return s == StateStoppedOut || s == StateClosedExternally
}

// Event is what a single tick did to the session.
type Event string

const (
	EventNone      Event = ""
	EventActivated Event = "ACTIVATED"
	EventStopMoved Event = "STOP_MOVED"
	EventStopHit   Event = "STOP_HIT"
)

// Machine is the state core shared by every trailing variant. It owns
// the transitions and the stop monotonicity; variants only propose a
// stop for the current tick.
//
// Состояние живёт в памяти процесса и не переживает рестарт: после
// перезапуска трейлинг начинается заново от текущей цены.
type Machine struct {
	side       model.Side
	entry      float64
	stop       float64 // 0 пока стоп не выставлен
	activation float64 // 0 когда трейлинг активен с первого тика
	minStepPct float64 // минимальное улучшение стопа в %, 0 = любое
	state      State
}

// NewMachine creates a session. activationPrice == 0 starts trailing
// immediately; initialStop == 0 starts without a protective stop until
// the first tick proposes one.
func NewMachine(side model.Side, entry, initialStop, activationPrice float64) *Machine {
	state := StateActive
	if activationPrice != 0 {
		state = StateWaiting
	}
	return &Machine{
		side:       side,
		entry:      entry,
		stop:       initialStop,
		activation: activationPrice,
		state:      state,
	}
}

func (m *Machine) State() State        { return m.state }
func (m *Machine) Stop() float64       { return m.stop }
func (m *Machine) Entry() float64      { return m.entry }
func (m *Machine) Side() model.Side    { return m.side }
func (m *Machine) Activation() float64 { return m.activation }

// MarkClosedExternally records that the exchange no longer has the
// position. Terminal, no further ticks change anything.
func (m *Machine) MarkClosedExternally() {
	if !m.state.Terminal() {
		m.state = StateClosedExternally
	}
}

// Tick feeds one price observation and the stop the variant wants.
// The proposed stop is applied only if it improves on the current one;
// a trailing stop never loosens.
func (m *Machine) Tick(price, desired float64) Event {
	if m.state.Terminal() {
		return EventNone
	}

	// Стоп проверяется первым: защитный стоп auto-варианта работает
	// и до активации трейлинга.
	if m.stop > 0 && m.crossed(price) {
		m.state = StateStoppedOut
		return EventStopHit
	}

	if m.state == StateWaiting {
		if !m.reachedActivation(price) {
			return EventNone
		}
		m.state = StateActive
		if m.improves(desired) {
			m.stop = desired
		}
		return EventActivated
	}

	if m.improves(desired) {
		m.stop = desired
		return EventStopMoved
	}
	return EventNone
}

func (m *Machine) crossed(price float64) bool {
	if m.side == model.Long {
		return price <= m.stop
	}
	return price >= m.stop
}

func (m *Machine) reachedActivation(price float64) bool {
	if m.side == model.Long {
		return price >= m.activation
	}
	return price <= m.activation
}

// improves accepts the first stop unconditionally, after that only a
// favorable move. minStepPct отсекает микроподвижки, чтобы стоп не
// дёргался на каждом тике.
func (m *Machine) improves(candidate float64) bool {
	if candidate <= 0 {
		return false
	}
	if m.stop == 0 {
		return true
	}

	var gain float64
	if m.side == model.Long {
		gain = candidate - m.stop
	} else {
		gain = m.stop - candidate
	}
	if gain <= 0 {
		return false
	}
	return gain/m.stop*100 >= m.minStepPct
}
