// Package ecs bridges ambient engine lifecycle events into a [Donburi]
// world.
//
// [NewEventSink] returns an [ambient.EventSink] that publishes every
// [ambient.LifecycleEvent] to [LifecycleEventType]. Subscribe to it in your
// ECS systems to react to state, theme, variant, and tier changes:
//
//	eng, _ := ambient.New(cfg, ambient.WithEventSink(ecs.NewEventSink(world)))
//	ecs.LifecycleEventType.Subscribe(world, onAmbientEvent)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
