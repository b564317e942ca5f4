package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/internal/logging"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.Emit(ctx, &domain.RepairEvent{EventBase: domain.EventBase{Type: domain.EventSlotCreated}, Element: "ck-templates__card"})
	hooks.Emit(ctx, &domain.RepairEvent{EventBase: domain.EventBase{Type: domain.EventSlotCreated}, Element: "ck-templates__card"})
	hooks.Emit(ctx, &domain.RepairEvent{EventBase: domain.EventBase{Type: domain.EventRootRepair}, Element: "ck-templates__page"})
	hooks.Emit(ctx, &domain.RepairEvent{EventBase: domain.EventBase{Type: domain.EventRepairCycle}, Cycles: 3})

	body := scrape(t, m)
	assert.Contains(t, body, `sections_repairs_total{element="ck-templates__card",event="slot_created"} 2`)
	assert.Contains(t, body, `sections_repairs_total{element="ck-templates__page",event="root_repair"} 1`)
	assert.Contains(t, body, `sections_repair_cycles_count 1`)
	assert.Contains(t, body, `sections_repair_cycles_sum 3`)
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveNormalization(nil)
	m.ObserveNormalization(errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `sections_normalizations_total{status="ok"} 1`)
	assert.Contains(t, body, `sections_normalizations_total{status="error"} 1`)
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnSlotMoved: func(context.Context, *domain.RepairEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{OnSlotMoved: func(context.Context, *domain.RepairEvent) { calls = append(calls, "b") }}

	hooks := observability.Combine(a, observability.LoggingHooks(logging.NewNop()), b)
	hooks.Emit(context.Background(), &domain.RepairEvent{EventBase: domain.EventBase{Type: domain.EventSlotMoved}})

	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Nil(t, observability.Combine(a).OnRootRepair)
}
