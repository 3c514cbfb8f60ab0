package ecs

import (
	"testing"

	"github.com/phanxgames/ambient"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewEventSink(t *testing.T) {
	world := donburi.NewWorld()
	if sink := NewEventSink(world); sink == nil {
		t.Fatal("NewEventSink returned nil")
	}
}

func TestEventSink_Publish(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewEventSink(world)

	var received []ambient.LifecycleEvent
	LifecycleEventType.Subscribe(world, func(w donburi.World, e ambient.LifecycleEvent) {
		received = append(received, e)
	})

	sink(ambient.LifecycleEvent{Kind: ambient.EventStateChanged, From: ambient.StateUninitialized, To: ambient.StateActive})
	sink(ambient.LifecycleEvent{Kind: ambient.EventThemeChanged, Theme: ambient.ThemeAmber})

	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	LifecycleEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if e := received[0]; e.Kind != ambient.EventStateChanged || e.To != ambient.StateActive {
		t.Errorf("event 0: %+v", e)
	}
	if e := received[1]; e.Kind != ambient.EventThemeChanged || e.Theme != ambient.ThemeAmber {
		t.Errorf("event 1: %+v", e)
	}
}

func TestEventSink_EngineLifecycle(t *testing.T) {
	world := donburi.NewWorld()

	type transition struct{ from, to ambient.State }
	var got []transition
	StateChanges(world, func(from, to ambient.State) {
		got = append(got, transition{from, to})
	})

	eng, err := ambient.New(ambient.DefaultConfig(),
		ambient.WithSignals(ambient.DeviceSignals{ReducedMotion: true}),
		ambient.WithEventSink(NewEventSink(world)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	host := ambient.NewManualHost(ambient.Viewport{Width: 1024, Height: 768})
	if err := eng.Mount(host, host.Viewport()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	eng.Dispose()
	events.ProcessAllEvents(world)

	want := []transition{
		{ambient.StateUninitialized, ambient.StateSuspended},
		{ambient.StateSuspended, ambient.StateDisposed},
	}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEventSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewEventSink(world)

	var count1, count2 int
	LifecycleEventType.Subscribe(world, func(w donburi.World, e ambient.LifecycleEvent) {
		count1++
	})
	LifecycleEventType.Subscribe(world, func(w donburi.World, e ambient.LifecycleEvent) {
		count2++
	})

	sink(ambient.LifecycleEvent{Kind: ambient.EventTierChanged})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
