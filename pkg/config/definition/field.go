package definition

import (
	"reflect"
	"sort"
)

// FieldDef defines a configuration field with its metadata
type FieldDef struct {
	Path      string       // Config path like "store.driver"
	Default   any          // Default value
	CLIFlag   string       // CLI flag name like "store-driver"
	Shorthand string       // Single character shorthand like "n"
	EnvVar    string       // Environment variable name like "SLYGUY_STORE_DRIVER"
	Type      reflect.Type // Field type for validation and flag binding
	Help      string       // Help text for CLI
}

// Registry holds all configuration field definitions
type Registry struct {
	fields map[string]FieldDef
}

// NewRegistry creates a new field registry
func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[string]FieldDef),
	}
}

// Register adds a field definition to the registry
func (r *Registry) Register(field *FieldDef) {
	if field.Type == nil && field.Default != nil {
		field.Type = reflect.TypeOf(field.Default)
	}
	r.fields[field.Path] = *field
}

// GetField returns a field definition by path
func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

// GetDefault returns the default value for a field path
func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// Fields returns all registered fields ordered by path.
func (r *Registry) Fields() []FieldDef {
	result := make([]FieldDef, 0, len(r.fields))
	for _, f := range r.fields {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// GetCLIFlagMapping returns a map of CLI flag names to config paths
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}
