package loam

// TemplateMetadata is the frontmatter of a template file.
// The markup is the document body, unless Template is set (JSON/YAML files).
type TemplateMetadata struct {
	Name     string `json:"name" mapstructure:"name"`
	Label    string `json:"label" mapstructure:"label"`
	Template string `json:"template" mapstructure:"template"`
}
