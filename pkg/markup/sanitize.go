package markup

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips scripts, event handlers and unknown attributes from
// untrusted HTML while keeping the structure templates rely on: classes,
// data attributes and the engine's ck-* hints.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(sanitizer().Sanitize(trimmed))
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class", "id", "title", "role").Globally()
		p.AllowDataAttributes()
		p.AllowAttrs(
			"ck-name", "ck-editable-type", "ck-allowed-elements", "ck-default-element",
		).Globally()
		p.AllowElements("section", "article", "header", "footer", "figure", "figcaption", "aside")
		policy = p
	})
	return policy
}
