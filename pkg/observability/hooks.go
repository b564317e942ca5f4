package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sections/pkg/domain"
)

// LoggingHooks logs every repair event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(ctx context.Context, e *domain.RepairEvent) {
		logger.DebugContext(ctx, "repair",
			"event", e.Type,
			"element", e.Element,
			"slot", e.Slot,
			"cycles", e.Cycles,
		)
	}
	return domain.LifecycleHooks{
		OnRepairCycle: log,
		OnSlotCreated: log,
		OnSlotMoved:   log,
		OnRootRepair:  log,
	}
}

// Combine returns hooks that call each of the given hooks in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRepairCycle: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.RepairEvent) { return h.OnRepairCycle }),
		OnSlotCreated: fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.RepairEvent) { return h.OnSlotCreated }),
		OnSlotMoved:   fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.RepairEvent) { return h.OnSlotMoved }),
		OnRootRepair:  fanOut(hooks, func(h domain.LifecycleHooks) func(context.Context, *domain.RepairEvent) { return h.OnRootRepair }),
	}
}

func fanOut(hooks []domain.LifecycleHooks, pick func(domain.LifecycleHooks) func(context.Context, *domain.RepairEvent)) func(context.Context, *domain.RepairEvent) {
	var fns []func(context.Context, *domain.RepairEvent)
	for _, h := range hooks {
		if fn := pick(h); fn != nil {
			fns = append(fns, fn)
		}
	}
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *domain.RepairEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
