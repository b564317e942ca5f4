// Package markup holds the external tree representation used on both sides of
// the conversion pipeline.
//
// Templates are written as strict XML and parsed with ParseTemplate, which
// rejects anything that is not a well-formed element tree. Documents are HTML
// fragments and go through the forgiving HTML5 parser (ParseHTML) and the
// matching serializer (RenderHTML). Sanitize strips untrusted markup before it
// reaches the upcast pipeline.
package markup
