package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/internal/logging"
	"github.com/aretw0/sections/pkg/adapters/memory"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/observability"
	"github.com/aretw0/sections/pkg/template"
)

const normalizedCard = `<div class="card"><h2 class="title">Hi</h2><div class="body"></div></div>`

// MockWatcher streams a fixed list of template events.
type MockWatcher struct {
	Events []string
}

func (m *MockWatcher) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, len(m.Events))
	for _, e := range m.Events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func newEngine(t *testing.T) *sections.Engine {
	t.Helper()
	eng, err := sections.New("", sections.WithTemplates(template.Definition{
		Name:   "card",
		Markup: `<div class="card"><h2 class="title" ck-name="title" ck-editable-type="text"></h2><div class="body" ck-name="body"></div></div>`,
	}))
	require.NoError(t, err)
	return eng
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func TestNormalize(t *testing.T) {
	handler := NewHandler(newEngine(t), WithLogger(logging.NewNop()))

	w := do(t, handler, "POST", "/normalize", NormalizeRequest{
		HTML: `<div class="card" onclick="steal()"><h2 class="title">Hi</h2><script>x()</script></div>`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res sections.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, normalizedCard, res.HTML)
	assert.True(t, res.Changed)
}

func TestNormalize_InvalidBody(t *testing.T) {
	handler := NewHandler(newEngine(t), WithLogger(logging.NewNop()))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/normalize", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplatesAndInfo(t *testing.T) {
	handler := NewHandler(newEngine(t), WithLogger(logging.NewNop()))

	w := do(t, handler, "GET", "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var defs []template.Definition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "card", defs[0].Name)

	w = do(t, handler, "GET", "/info", nil)
	assert.Contains(t, w.Body.String(), sections.Version)

	w = do(t, handler, "GET", "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, handler, "GET", "/documents", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "documents are disabled without a store")
}

func TestDocuments_Lifecycle(t *testing.T) {
	metrics := observability.NewMetrics()
	handler := NewHandler(newEngine(t),
		WithStore(memory.NewStore()),
		WithLocker(memory.NewLocker()),
		WithMetrics(metrics),
		WithLogger(logging.NewNop()),
	)

	w := do(t, handler, "POST", "/documents", NormalizeRequest{HTML: `<div class="card"><h2 class="title">Hi</h2></div>`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, normalizedCard, created.HTML)

	w = do(t, handler, "GET", "/documents/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded domain.StoredDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, normalizedCard, loaded.HTML)

	w = do(t, handler, "PUT", "/documents/"+created.ID, NormalizeRequest{HTML: `<div class="card"><div class="body"></div></div>`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, `<div class="card"><h2 class="title"></h2><div class="body"></div></div>`, updated.HTML)
	assert.True(t, updated.Changed)

	w = do(t, handler, "GET", "/documents", nil)
	assert.JSONEq(t, `["`+created.ID+`"]`, w.Body.String())

	w = do(t, handler, "DELETE", "/documents/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, handler, "GET", "/documents/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, handler, "PUT", "/documents/missing", NormalizeRequest{HTML: ""})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, handler, "GET", "/metrics", nil)
	assert.Contains(t, w.Body.String(), `sections_normalizations_total{status="ok"} 2`)
}

func TestSubscribeEvents_Templates(t *testing.T) {
	handler := NewHandler(newEngine(t),
		WithWatcher(&MockWatcher{Events: []string{"card.html"}}),
		WithLogger(logging.NewNop()),
	)

	w := do(t, handler, "GET", "/events", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "data: card.html")
}

func TestSubscribeEvents_NoWatcher(t *testing.T) {
	handler := NewHandler(newEngine(t), WithLogger(logging.NewNop()))

	w := do(t, handler, "GET", "/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents_Document(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), &domain.StoredDocument{ID: "doc-1"}))
	handler := NewHandler(newEngine(t), WithStore(store), WithLogger(logging.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?document_id=doc-1", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(wSub, reqSub)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	w := do(t, handler, "PUT", "/documents/doc-1", NormalizeRequest{HTML: `<div class="card"></div>`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Stop subscription to flush
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"id":"doc-1"`)
	assert.Contains(t, output, `"changed":true`)
}
