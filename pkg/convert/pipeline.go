package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/template"
)

// Pipeline applies the rules of a registry to documents. It holds no
// document state and may be shared.
type Pipeline struct {
	reg    *template.Registry
	rules  *Rules
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline generates the rules of reg.
func NewPipeline(reg *template.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		reg:    reg,
		rules:  Generate(reg),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry the rules were generated from.
func (p *Pipeline) Registry() *template.Registry { return p.reg }

// Rules returns the generated rules.
func (p *Pipeline) Rules() *Rules { return p.rules }

// SetData replaces the content of the main root with the upcast of raw.
func (p *Pipeline) SetData(doc *model.Document, raw string) (Report, error) {
	return p.SetDataContext(context.Background(), doc, raw)
}

// SetDataContext is SetData with a context passed to post-fixers.
func (p *Pipeline) SetDataContext(ctx context.Context, doc *model.Document, raw string) (Report, error) {
	nodes, err := markup.ParseHTML(raw)
	if err != nil {
		return Report{}, err
	}

	var report Report
	root := doc.Root(domain.MainRoot)
	err = doc.ChangeContext(ctx, model.BatchDefault, func(w *model.Writer) error {
		if err := w.Clear(root); err != nil {
			return err
		}
		report, err = p.Upcast(w, root, nodes)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("failed to set data: %w", err)
	}
	p.logger.Debug("data loaded", "converted", report.Converted, "unmatched", report.Unmatched, "rejected", report.Rejected)
	return report, nil
}

// GetData renders the main root with the data downcast.
func (p *Pipeline) GetData(doc *model.Document) (string, error) {
	return markup.RenderHTML(p.Downcast(doc, doc.Root(domain.MainRoot), false)...)
}
