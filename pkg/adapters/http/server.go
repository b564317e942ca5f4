package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/observability"
	"github.com/aretw0/sections/pkg/ports"
	"github.com/aretw0/sections/pkg/session"
	"github.com/aretw0/sections/pkg/template"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// lockTTL bounds how long a document update may hold its lock.
const lockTTL = 10 * time.Second

// Engine defines the part of the sections engine the server needs.
type Engine interface {
	NormalizeContext(ctx context.Context, raw string) (sections.Result, error)
	Templates() []template.Definition
}

// Server serves the engine and, when a store is configured, documents.
type Server struct {
	Engine  Engine
	Store   ports.DocumentStore
	Locker  ports.DistributedLocker
	Watcher ports.Watchable
	Metrics *observability.Metrics
	Streams *StreamManager
	Logger  *slog.Logger

	// Sessions serializes document writes over Store and Locker.
	Sessions *session.Manager
}

// Option configures the Server.
type Option func(*Server)

// WithStore enables the /documents endpoints.
func WithStore(store ports.DocumentStore) Option {
	return func(s *Server) { s.Store = store }
}

// WithLocker serializes document updates.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) { s.Locker = locker }
}

// WithWatcher streams template changes on /events.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) { s.Watcher = w }
}

// WithMetrics exposes /metrics and counts normalizations.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.Logger
	if server.Store != nil {
		sessionOpts := []session.Option{session.WithLockTTL(lockTTL), session.WithLogger(server.Logger)}
		if server.Locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(server.Locker))
		}
		server.Sessions = session.NewManager(server.Store, sessionOpts...)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/templates", server.GetTemplates)
	r.Post("/normalize", server.Normalize)
	r.Get("/events", server.SubscribeEvents)

	if server.Store != nil {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", server.ListDocuments)
			r.Post("/", server.CreateDocument)
			r.Get("/{id}", server.GetDocument)
			r.Put("/{id}", server.UpdateDocument)
			r.Delete("/{id}", server.DeleteDocument)
		})
	}
	if server.Metrics != nil {
		r.Handle("/metrics", server.Metrics.Handler())
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NormalizeRequest is the body of POST /normalize and document writes.
type NormalizeRequest struct {
	HTML string `json:"html"`
}

// DocumentResponse is a stored document together with its last repair.
type DocumentResponse struct {
	*domain.StoredDocument
	Changed bool `json:"changed"`
	Cycles  int  `json:"cycles"`
}

// Normalize handles the POST /normalize request.
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r, "Normalize")
	if !ok {
		return
	}

	res, err := s.normalize(r.Context(), body.HTML)
	if err != nil {
		http.Error(w, fmt.Sprintf("Normalize error: %v", err), http.StatusUnprocessableEntity)
		s.Logger.Error("Normalize failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetTemplates handles the GET /templates request.
func (s *Server) GetTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Templates())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":       "sections-http",
		"version":   sections.Version,
		"templates": len(s.Engine.Templates()),
		"documents": s.Store != nil,
	})
}

// ListDocuments handles the GET /documents request.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("List documents failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateDocument handles the POST /documents request.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r, "CreateDocument")
	if !ok {
		return
	}

	res, err := s.normalize(r.Context(), body.HTML)
	if err != nil {
		http.Error(w, fmt.Sprintf("Normalize error: %v", err), http.StatusUnprocessableEntity)
		return
	}

	doc := &domain.StoredDocument{ID: uuid.NewString(), HTML: res.HTML}
	if err := s.Sessions.Create(r.Context(), doc); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Save document failed", "error", err)
		return
	}
	s.Logger.Debug("document created", "document_id", doc.ID)
	writeJSON(w, http.StatusCreated, DocumentResponse{StoredDocument: doc, Changed: res.Changed, Cycles: res.Cycles})
}

// GetDocument handles the GET /documents/{id} request.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, "Load", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// UpdateDocument handles the PUT /documents/{id} request. The new markup
// is normalized and the change is broadcast to subscribers of the document.
func (s *Server) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, ok := s.decode(w, r, "UpdateDocument")
	if !ok {
		return
	}

	var res sections.Result
	doc, err := s.Sessions.Update(r.Context(), id, func(ctx context.Context, doc *domain.StoredDocument) error {
		var err error
		if res, err = s.normalize(ctx, body.HTML); err != nil {
			return &normalizeError{err}
		}
		doc.HTML = res.HTML
		return nil
	})

	var nerr *normalizeError
	switch {
	case errors.As(err, &nerr):
		http.Error(w, fmt.Sprintf("Normalize error: %v", nerr.err), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, session.ErrLockFailed):
		http.Error(w, fmt.Sprintf("Lock error: %v", err), http.StatusConflict)
		s.Logger.Warn("UpdateDocument: lock failed", "document_id", id, "error", err)
		return
	case err != nil:
		s.storeError(w, "Update", err)
		return
	}

	resp := DocumentResponse{StoredDocument: doc, Changed: res.Changed, Cycles: res.Cycles}
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteDocument handles the DELETE /documents/{id} request.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.storeError(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type normalizeError struct{ err error }

func (e *normalizeError) Error() string { return e.err.Error() }

// SubscribeEvents handles the GET /events request (SSE). With a
// document_id query parameter it streams updates of that document;
// otherwise it streams template changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var events <-chan string
	documentID := r.URL.Query().Get("document_id")
	if documentID == "" {
		if s.Watcher == nil {
			http.Error(w, "Template watching not enabled", http.StatusNotFound)
			return
		}
		ch, err := s.Watcher.Watch(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
			return
		}
		s.Logger.Info("SSE: Subscribing to template changes")
		events = ch
	} else {
		ch, cancel := s.Streams.Subscribe(documentID)
		defer cancel()
		s.Logger.Info("SSE: Subscribing to document updates", "document_id", documentID)
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string) (NormalizeRequest, bool) {
	var body NormalizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn(op+": Invalid request body", "error", err)
		return body, false
	}
	return body, true
}

// normalize sanitizes untrusted input before it reaches the engine.
func (s *Server) normalize(ctx context.Context, raw string) (sections.Result, error) {
	res, err := s.Engine.NormalizeContext(ctx, markup.Sanitize(raw))
	if s.Metrics != nil {
		s.Metrics.ObserveNormalization(err)
	}
	return res, err
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrDocumentNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.Logger.Error(op+" document failed", "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
