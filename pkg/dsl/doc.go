/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing section templates.

It allows developers to define templates using a type-safe, fluent builder pattern
instead of writing the ck-* annotated markup by hand. This is particularly useful for
generated templates, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New()

	b.Template("card").Label("Card").
		Element("div", "card").
		Text("title", "h2", "title").Up().
		Slot("body", "div", "body")

	b.Template("page").
		Element("main", "page").
		Container("content", "div", "content").Allow("card").Default("card")

	defs, err := b.Build()
	// ... pass defs to sections.New("", sections.WithTemplates(defs...))
*/
package dsl
