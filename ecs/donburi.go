package ecs

import (
	"github.com/phanxgames/ambient"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LifecycleEventType is the Donburi event type for ambient lifecycle events.
// Events are queued; call ProcessEvents on the world to deliver them.
var LifecycleEventType = events.NewEventType[ambient.LifecycleEvent]()

// NewEventSink returns an EventSink that publishes to LifecycleEventType in
// world.
func NewEventSink(world donburi.World) ambient.EventSink {
	return func(ev ambient.LifecycleEvent) {
		LifecycleEventType.Publish(world, ev)
	}
}

// StateChanges subscribes fn to state transitions only.
func StateChanges(world donburi.World, fn func(from, to ambient.State)) {
	LifecycleEventType.Subscribe(world, func(_ donburi.World, ev ambient.LifecycleEvent) {
		if ev.Kind == ambient.EventStateChanged {
			fn(ev.From, ev.To)
		}
	})
}
