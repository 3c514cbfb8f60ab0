package ambient

import "errors"

// State is the lifecycle state of an Engine.
type State uint8

const (
	StateUninitialized State = iota
	StateActive
	StateSuspended // reduced motion, Off tier, or unmounted
	StateDisposed  // terminal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

var (
	// ErrDisposed is returned when mounting a disposed engine.
	ErrDisposed = errors.New("ambient: engine disposed")
	// ErrNoHost is returned when mounting without a frame host.
	ErrNoHost = errors.New("ambient: nil frame host")
)

// EventKind identifies a lifecycle notification.
type EventKind uint8

const (
	EventStateChanged EventKind = iota
	EventThemeChanged
	EventVariantChanged
	EventTierChanged
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state"
	case EventThemeChanged:
		return "theme"
	case EventVariantChanged:
		return "variant"
	case EventTierChanged:
		return "tier"
	default:
		return "unknown"
	}
}

// LifecycleEvent describes one engine transition. Fields not relevant to
// Kind carry the engine's current values.
type LifecycleEvent struct {
	Kind    EventKind
	From    State
	To      State
	Theme   Theme
	Variant Variant
	Tier    QualityTier
}

// EventSink receives lifecycle events synchronously on the frame loop.
type EventSink func(LifecycleEvent)

func (e *Engine) emit(ev LifecycleEvent) {
	ev.Theme = e.cfg.Theme
	ev.Variant = e.cfg.Variant
	ev.Tier = e.tier
	if ev.Kind != EventStateChanged {
		ev.From, ev.To = e.state, e.state
	}
	if e.sink != nil {
		e.sink(ev)
	}
}

// setState transitions and reports the change. Same-state calls are
// ignored.
func (e *Engine) setState(to State) {
	from := e.state
	if from == to {
		return
	}
	e.state = to
	Logger().Info("engine state", "from", from.String(), "to", to.String(), "tier", e.tier.Level.String())
	e.emit(LifecycleEvent{Kind: EventStateChanged, From: from, To: to})
}
