// Package catalog holds the built-in component palette, protocol tables and
// security rule metadata, embedded as YAML so the data can be extended
// without touching dispatch code.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"archatlas/internal/domain"
)

//go:embed components.yaml
var defaultCatalogYAML []byte

//go:embed rules.yaml
var defaultRulesYAML []byte

// Entry describes one palette component.
type Entry struct {
	ID       string               `yaml:"id"`
	Type     domain.ComponentType `yaml:"type"`
	Name     string               `yaml:"name"`
	Category string               `yaml:"category"`
}

// Protocol describes one well-known protocol and its default port.
type Protocol struct {
	Name        string `yaml:"name"`
	Port        int    `yaml:"port"`
	Description string `yaml:"description"`
}

// Zone describes a security zone.
type Zone struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is the parsed component/protocol/zone data.
type Catalog struct {
	Components []Entry `yaml:"components"`
	Protocols  struct {
		Secure    []Protocol `yaml:"secure"`
		Databases []Protocol `yaml:"databases"`
		Legacy    []Protocol `yaml:"legacy"`
	} `yaml:"protocols"`
	Zones []Zone `yaml:"zones"`
}

// RuleMeta is the declarative part of a security rule; the matching
// predicate is registered separately in internal/rules.
type RuleMeta struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Category    string          `yaml:"category"`
	Severity    domain.Severity `yaml:"severity"`
	Description string          `yaml:"description"`
	Fix         string          `yaml:"fix"`
	AutoFix     bool            `yaml:"auto_fix"`
	Standards   []string        `yaml:"standards"`
}

type ruleFile struct {
	Rules []RuleMeta `yaml:"rules"`
}

// Load parses the catalog. With an empty path the embedded default is
// used; otherwise the file at path replaces it.
func Load(path string) (*Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for _, e := range c.Components {
		if !e.Type.Valid() {
			return nil, fmt.Errorf("catalog entry %q has unknown type %q", e.ID, e.Type)
		}
	}
	return &c, nil
}

// LoadRules parses rule metadata, embedded by default.
func LoadRules(path string) ([]RuleMeta, error) {
	data := defaultRulesYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules %s: %w", path, err)
		}
	}

	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return f.Rules, nil
}

// Find returns the palette entry with the given id, or nil.
func (c *Catalog) Find(id string) *Entry {
	for i := range c.Components {
		if c.Components[i].ID == id {
			return &c.Components[i]
		}
	}
	return nil
}
