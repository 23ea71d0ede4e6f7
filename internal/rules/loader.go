package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a user-supplied rule catalog from a YAML file and
// validates it. Loaded catalogs extend the built-in library; they never
// replace it.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates YAML catalog bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Registry resolves catalog names to catalogs, built-in or loaded.
type Registry struct {
	catalogs map[string]*Catalog
}

// NewRegistry returns a registry seeded with the built-in catalogs.
func NewRegistry() *Registry {
	r := &Registry{catalogs: make(map[string]*Catalog, len(builtins))}
	for name, c := range builtins {
		r.catalogs[name] = c
	}
	return r
}

// Catalog returns the catalog registered under name.
func (r *Registry) Catalog(name string) (*Catalog, bool) {
	c, ok := r.catalogs[name]
	return c, ok
}

// Register adds a loaded catalog. Registering over a built-in name is
// rejected so user files cannot shadow the shipped rule libraries.
func (r *Registry) Register(c *Catalog) error {
	if _, ok := builtins[c.Name]; ok {
		return &ConfigError{Catalog: c.Name, Reason: "cannot shadow a built-in catalog"}
	}
	if err := c.Validate(); err != nil {
		return err
	}
	r.catalogs[c.Name] = c
	return nil
}

// Names returns all registered catalog names, built-ins first.
func (r *Registry) Names() []string {
	names := BuiltinNames()
	var extra []string
	for name := range r.catalogs {
		if _, ok := builtins[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
