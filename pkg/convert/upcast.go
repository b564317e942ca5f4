package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/template"
)

// Report counts what an upcast did with its input.
type Report struct {
	// Converted is the number of model nodes created, text included.
	Converted int
	// Unmatched counts elements no template matched. Their children are
	// still converted into the same parent.
	Unmatched int
	// Rejected counts nodes the schema refused, with their subtrees. An
	// element is rejected only when no matching template fits its parent.
	Rejected int
}

func (r *Report) add(o Report) {
	r.Converted += o.Converted
	r.Unmatched += o.Unmatched
	r.Rejected += o.Rejected
}

// Upcast converts nodes into children of parent, appended in order.
func (p *Pipeline) Upcast(w *model.Writer, parent model.NodeID, nodes []*markup.Element) (Report, error) {
	var report Report
	for _, el := range nodes {
		r, err := p.upcastNode(w, parent, el)
		report.add(r)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (p *Pipeline) upcastNode(w *model.Writer, parent model.NodeID, el *markup.Element) (Report, error) {
	var report Report

	if el.Type == markup.TextNode {
		id := w.CreateText(el.Data)
		err := w.Append(id, parent)
		switch {
		case err == nil:
			report.Converted++
		case errors.Is(err, domain.ErrIllegalChild):
			if strings.TrimSpace(el.Data) != "" {
				report.Rejected++
			}
		default:
			return report, err
		}
		return report, nil
	}

	matched := false
	node := p.reg.ResolveFunc(el, func(n *template.Node) bool {
		matched = true
		return w.Accepts(parent, n.Name())
	})
	if node == nil && !matched {
		report.Unmatched++
		p.logger.Debug("no template matches element", "tag", el.Tag)
		r, err := p.Upcast(w, parent, el.Children)
		report.add(r)
		return report, err
	}
	if node == nil {
		report.Rejected++
		p.logger.Debug("schema rejected every matching template", "tag", el.Tag, "parent", w.Document().Name(parent))
		return report, nil
	}

	rule := UpcastRule{Node: node}
	id, err := w.AppendElement(node.Name(), rule.Attributes(el), parent)
	if err != nil {
		return report, fmt.Errorf("failed to upcast %s: %w", node.Name(), err)
	}
	report.Converted++

	r, err := p.Upcast(w, id, el.Children)
	report.add(r)
	return report, err
}
