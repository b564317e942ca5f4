package domain

// Reserved names shared by the template registry, the converters and the model.
const (
	// QualifiedPrefix prefixes every qualified template name registered in the model.
	QualifiedPrefix = "ck-templates__"

	// InternalPrefix marks attributes that never leave the engine (e.g. "ck-name").
	InternalPrefix = "ck-"

	// NameSeparator joins a local name onto its parent chain.
	NameSeparator = "__"

	// AttrName carries the explicit local name of a template element.
	AttrName = "ck-name"

	// AttrEditableType selects a built-in template kind ("text", "container").
	AttrEditableType = "ck-editable-type"

	// AttrAllowedElements lists the template names a container accepts, space separated.
	AttrAllowedElements = "ck-allowed-elements"

	// AttrDefaultElement names the template appended to an empty container.
	AttrDefaultElement = "ck-default-element"

	// AttrClass is never mirrored by attribute converters.
	AttrClass = "class"
)

// Model names that are not templates.
const (
	// RootName is the element name of every document root.
	RootName = "$root"
	// TextName is the element name of text nodes.
	TextName = "$text"
	// MainRoot is the name of the default document root.
	MainRoot = "main"
	// GraveyardRoot is the transient root receiving removed content.
	GraveyardRoot = "$graveyard"
)

// IsInternalAttribute reports whether an attribute key is reserved for the engine.
func IsInternalAttribute(key string) bool {
	return len(key) >= len(InternalPrefix) && key[:len(InternalPrefix)] == InternalPrefix
}

// QualifiedName turns a template name into the model element name of its root node.
func QualifiedName(templateName string) string {
	return QualifiedPrefix + templateName
}
