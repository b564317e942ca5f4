package schema

import (
	"sort"

	"github.com/aretw0/sections/pkg/model"
)

// Validate walks every non-graveyard root of doc and reports each node the
// schema would not accept where it is, and each attribute it does not
// allow. Returns nil or an *AggregateError.
func Validate(s *Schema, doc *model.Document) error {
	var errs []error

	for _, rootName := range doc.RootNames() {
		root := doc.Root(rootName)
		doc.Walk(root, func(n *model.Node) bool {
			if n.ID == root {
				return true
			}
			path := doc.Path(n.ID)
			context := path[:len(path)-1]
			if !s.CheckChild(context, n.Name) {
				errs = append(errs, &ValidationError{
					Path:   path,
					Reason: "not allowed in " + context[len(context)-1],
				})
				// Children of an illegal node are not checked.
				return false
			}
			if n.IsText() {
				return true
			}

			keys := make([]string, 0, len(n.Attrs))
			for k := range n.Attrs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if !s.CheckAttribute(n.Name, k) {
					errs = append(errs, &ValidationError{Path: path, Key: k, Reason: "not allowed"})
				}
			}
			return true
		})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
