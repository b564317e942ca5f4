// Package schema constrains where model elements may be placed.
//
// A Schema holds one Definition per element name plus an ordered list of
// child checks. Build derives both from a template registry: every
// template node accepts its declared slots, text kinds accept text,
// container kinds accept their allowed top-level templates, and document
// roots accept either the root policy template or any top-level template.
//
//	reg := template.NewRegistry()
//	_ = reg.Register(defs...)
//	s := schema.Build(reg, schema.WithRootPolicy("_root"))
//	doc := model.NewDocument(model.WithSchema(s))
//
// The schema only rejects illegal insertions. Missing or misordered slots
// are repaired elsewhere.
package schema
