package sections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/sections/internal/runtime"
	loamAdapter "github.com/aretw0/sections/pkg/adapters/loam"
	"github.com/aretw0/sections/pkg/convert"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/ports"
	"github.com/aretw0/sections/pkg/schema"
	"github.com/aretw0/sections/pkg/template"
)

// Engine is the high-level entry point for the sections library.
// It owns the template registry and everything derived from it. An Engine
// is read-only after New and may be shared across goroutines; documents
// are not.
type Engine struct {
	reg        *template.Registry
	schema     *schema.Schema
	pipeline   *convert.Pipeline
	normalizer *runtime.Normalizer
	root       *runtime.RootEnforcer

	source     ports.TemplateSource
	defs       []template.Definition
	kinds      []template.Kind
	bareKinds  bool
	rootPolicy string
	maxCycles  int
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	mu       sync.Mutex
	attached map[*model.Document]bool

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTemplates registers templates in addition to those of the source.
func WithTemplates(defs ...template.Definition) Option {
	return func(e *Engine) {
		e.defs = append(e.defs, defs...)
	}
}

// WithTemplateSource injects a custom TemplateSource, bypassing the default Loam initialization.
func WithTemplateSource(src ports.TemplateSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithRootPolicy requires every document root to hold exactly one instance
// of the named template.
func WithRootPolicy(templateName string) Option {
	return func(e *Engine) {
		e.rootPolicy = templateName
	}
}

// WithKinds adds template kinds, tried before the built-in ones.
func WithKinds(kinds ...template.Kind) Option {
	return func(e *Engine) {
		e.kinds = append(e.kinds, kinds...)
	}
}

// WithoutDefaultKinds drops the built-in text, container and element kinds.
func WithoutDefaultKinds() Option {
	return func(e *Engine) {
		e.bareKinds = true
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxRepairCycles overrides the post-fixer cycle budget of documents
// created by the engine.
func WithMaxRepairCycles(n int) Option {
	return func(e *Engine) {
		e.maxCycles = n
	}
}

// New initializes a new Engine.
// By default, it reads templates from a Loam repository at templateDir.
// If WithTemplateSource or WithTemplates is provided, templateDir can be
// empty and Loam is skipped.
func New(templateDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{attached: make(map[*model.Document]bool)}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil && len(eng.defs) == 0 {
		if templateDir == "" {
			return nil, fmt.Errorf("templateDir is required when no templates are provided")
		}

		absPath, err := filepath.Abs(templateDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		src, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, err
		}
		eng.source = src
	} else if templateDir != "" {
		eng.Name = filepath.Base(templateDir)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("templates", eng.Name)
	}

	defs := eng.defs
	if eng.source != nil {
		loaded, err := eng.source.LoadTemplates(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		defs = append(loaded, eng.defs...)
	}

	regOpts := []template.Option{template.WithLogger(eng.logger)}
	if len(eng.kinds) > 0 {
		regOpts = append(regOpts, template.WithKinds(eng.kinds...))
	}
	if eng.bareKinds {
		regOpts = append(regOpts, template.WithoutDefaultKinds())
	}
	eng.reg = template.NewRegistry(regOpts...)
	if err := eng.reg.Register(defs...); err != nil {
		return nil, fmt.Errorf("failed to register templates: %w", err)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.rootPolicy != "" {
		root, err := runtime.NewRootEnforcer(eng.reg, eng.rootPolicy, runtimeOpts...)
		if err != nil {
			return nil, err
		}
		eng.root = root
	}

	eng.schema = schema.Build(eng.reg, schema.WithRootPolicy(eng.rootPolicy))
	eng.pipeline = convert.NewPipeline(eng.reg, convert.WithLogger(eng.logger))
	eng.normalizer = runtime.NewNormalizer(eng.reg, runtimeOpts...)

	eng.logger.Debug("engine ready", "templates", len(eng.reg.Definitions()), "nodes", eng.reg.Len(), "root_policy", eng.rootPolicy)
	return eng, nil
}

// Registry returns the template registry.
func (e *Engine) Registry() *template.Registry { return e.reg }

// Schema returns the schema derived from the registry.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Pipeline returns the conversion pipeline.
func (e *Engine) Pipeline() *convert.Pipeline { return e.pipeline }

// Templates returns the registered template definitions in registration order.
func (e *Engine) Templates() []template.Definition { return e.reg.Definitions() }

// RootPolicy returns the template name of the root policy, or "".
func (e *Engine) RootPolicy() string { return e.rootPolicy }

// Watchable reports whether the template source supports Watch.
func (e *Engine) Watchable() bool {
	_, ok := e.source.(ports.Watchable)
	return ok
}

// Watch notifies about template source changes. The engine itself does not
// reload; callers build a new Engine when an event arrives.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current template source does not support watching")
}

// NewDocument creates an empty, detached document constrained by the
// engine schema.
func (e *Engine) NewDocument() *model.Document {
	opts := []model.Option{
		model.WithSchema(e.schema),
		model.WithLogger(e.logger),
	}
	if e.maxCycles > 0 {
		opts = append(opts, model.WithMaxRepairCycles(e.maxCycles))
	}
	return model.NewDocument(opts...)
}

// Attachment is the installation of an engine into one document.
type Attachment struct {
	engine  *Engine
	doc     *model.Document
	handles []model.Handle
	once    sync.Once
}

// Document returns the attached document.
func (a *Attachment) Document() *model.Document { return a.doc }

// Detach removes the repair passes from the document. It is safe to call
// more than once.
func (a *Attachment) Detach() {
	a.once.Do(func() {
		for _, h := range a.handles {
			h.Remove()
		}
		a.engine.mu.Lock()
		delete(a.engine.attached, a.doc)
		a.engine.mu.Unlock()
	})
}

// Attach installs the engine into doc. See AttachContext.
func (e *Engine) Attach(doc *model.Document) (*Attachment, error) {
	return e.AttachContext(context.Background(), doc)
}

// AttachContext installs the engine into doc: it sets the schema, registers
// one post-fixer per template node and the root post-fixer, then repairs
// the whole document once in a transparent change block.
func (e *Engine) AttachContext(ctx context.Context, doc *model.Document) (*Attachment, error) {
	e.mu.Lock()
	if e.attached[doc] {
		e.mu.Unlock()
		return nil, domain.ErrAlreadyAttached
	}
	e.attached[doc] = true
	e.mu.Unlock()

	a := &Attachment{engine: e, doc: doc}
	doc.SetSchema(e.schema)
	for _, n := range e.reg.Nodes() {
		a.handles = append(a.handles, doc.RegisterPostFixer(e.normalizer.PostFixer(n)))
	}
	if e.root != nil {
		a.handles = append(a.handles, doc.RegisterPostFixer(e.root.PostFixer()))
	}
	a.handles = append(a.handles, doc.OnChange(func(b model.Batch) {
		if b.Cycles == 0 {
			return
		}
		e.hooks.Emit(ctx, &domain.RepairEvent{
			EventBase: domain.EventBase{Type: domain.EventRepairCycle},
			Cycles:    b.Cycles,
		})
	}))

	if err := doc.ChangeContext(ctx, model.BatchTransparent, e.ready); err != nil {
		a.Detach()
		return nil, fmt.Errorf("document repair failed: %w", err)
	}
	return a, nil
}

// ready repairs a freshly attached document. Its changes, if any, start
// the post-fixer loop.
func (e *Engine) ready(w *model.Writer) error {
	doc := w.Document()
	for _, name := range doc.RootNames() {
		if _, err := e.normalizer.NormalizeTree(w, doc.Root(name)); err != nil {
			return err
		}
	}
	if e.root != nil {
		if _, err := e.root.Enforce(w); err != nil {
			return err
		}
	}
	return nil
}

// Load upcasts raw into a new document and attaches the engine to it.
func (e *Engine) Load(ctx context.Context, raw string) (*model.Document, convert.Report, error) {
	doc := e.NewDocument()
	report, err := e.pipeline.SetDataContext(ctx, doc, raw)
	if err != nil {
		return nil, report, err
	}
	if _, err := e.AttachContext(ctx, doc); err != nil {
		return nil, report, err
	}
	return doc, report, nil
}

// Result is the outcome of Normalize.
type Result struct {
	// HTML is the data downcast of the repaired document.
	HTML string `json:"html"`
	// Report counts converted, unmatched and rejected input nodes.
	Report convert.Report `json:"report"`
	// Changed reports whether repair altered the upcast document.
	Changed bool `json:"changed"`
	// Cycles is the number of post-fixer rounds the repair needed.
	Cycles int `json:"cycles"`
}

// Normalize upcasts raw, repairs it and returns the resulting markup.
func (e *Engine) Normalize(raw string) (Result, error) {
	return e.NormalizeContext(context.Background(), raw)
}

// NormalizeContext is Normalize with a context passed to lifecycle hooks.
func (e *Engine) NormalizeContext(ctx context.Context, raw string) (Result, error) {
	doc := e.NewDocument()
	report, err := e.pipeline.SetDataContext(ctx, doc, raw)
	if err != nil {
		return Result{}, err
	}
	before, err := e.pipeline.GetData(doc)
	if err != nil {
		return Result{}, err
	}

	a, err := e.AttachContext(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	defer a.Detach()

	after, err := e.pipeline.GetData(doc)
	if err != nil {
		return Result{}, err
	}

	res := Result{HTML: after, Report: report, Changed: before != after}
	for _, b := range doc.History() {
		res.Cycles += b.Cycles
	}
	return res, nil
}

// EditingHTML upcasts raw, repairs it and returns the editing downcast.
func (e *Engine) EditingHTML(ctx context.Context, raw string) (string, error) {
	doc := e.NewDocument()
	if _, err := e.pipeline.SetDataContext(ctx, doc, raw); err != nil {
		return "", err
	}
	a, err := e.AttachContext(ctx, doc)
	if err != nil {
		return "", err
	}
	defer a.Detach()

	view := e.pipeline.Editing(doc)
	defer view.Close()
	return view.HTML()
}

// Data returns the data downcast of doc.
func (e *Engine) Data(doc *model.Document) (string, error) {
	return e.pipeline.GetData(doc)
}

// Editing returns a live editing view of doc. Close it when done.
func (e *Engine) Editing(doc *model.Document) *convert.EditingView {
	return e.pipeline.Editing(doc)
}

// Validate checks doc against the engine schema.
func (e *Engine) Validate(doc *model.Document) error {
	return schema.Validate(e.schema, doc)
}

// SectionOf returns the nearest section containing id (id included), or
// 0. A section is an instance of a top-level template other than the root
// policy template.
func (e *Engine) SectionOf(doc *model.Document, id model.NodeID) model.NodeID {
	return doc.Ancestor(id, func(n *model.Node) bool {
		return e.isSection(n.Name)
	})
}

func (e *Engine) isSection(name string) bool {
	t, ok := e.reg.Get(name)
	if !ok || !t.IsTopLevel() {
		return false
	}
	return e.root == nil || name != e.root.Name()
}
