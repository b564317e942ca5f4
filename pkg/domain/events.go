package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRepairCycle EventType = "repair_cycle"
	EventSlotCreated EventType = "slot_created"
	EventSlotMoved   EventType = "slot_moved"
	EventRootRepair  EventType = "root_repair"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RepairEvent describes a single structural fix or a finished repair cycle.
type RepairEvent struct {
	EventBase
	// Element is the qualified name of the node that was repaired (or created).
	Element string `json:"element,omitempty"`
	// Slot is the slot name involved, if any.
	Slot string `json:"slot,omitempty"`
	// Cycles is the number of fixer rounds used by a commit (EventRepairCycle only).
	Cycles int `json:"cycles,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRepairCycle func(context.Context, *RepairEvent)
	OnSlotCreated func(context.Context, *RepairEvent)
	OnSlotMoved   func(context.Context, *RepairEvent)
	OnRootRepair  func(context.Context, *RepairEvent)
}

// Emit dispatches an event to the matching hook, if any.
func (h LifecycleHooks) Emit(ctx context.Context, e *RepairEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	switch e.Type {
	case EventRepairCycle:
		if h.OnRepairCycle != nil {
			h.OnRepairCycle(ctx, e)
		}
	case EventSlotCreated:
		if h.OnSlotCreated != nil {
			h.OnSlotCreated(ctx, e)
		}
	case EventSlotMoved:
		if h.OnSlotMoved != nil {
			h.OnSlotMoved(ctx, e)
		}
	case EventRootRepair:
		if h.OnRootRepair != nil {
			h.OnRootRepair(ctx, e)
		}
	}
}
