// Package bosses holds the boss stat catalog and builds the pinned stat view.
package bosses

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownBoss is returned for names that are not in the catalog.
var ErrUnknownBoss = errors.New("unknown boss")

//go:embed data/bosses.yaml
var defaultCatalog []byte

// StatKeys lists the stat columns in display order.
var StatKeys = []string{
	"standard", "slash", "strike", "pierce",
	"magic", "fire", "lightning", "holy",
	"bleed", "frostbite", "poison", "rot", "sleep", "frenzy",
}

// Boss is one row of the catalog.
type Boss struct {
	Name        string            `yaml:"name" json:"name"`
	Weakness    string            `yaml:"weakness" json:"weakness"`         // icon string, e.g. "#fire#holy"
	DealtDamage string            `yaml:"dealt_damage" json:"dealt_damage"` // icon string
	Stats       map[string]string `yaml:"stats" json:"stats"`
}

// Catalog is an immutable set of bosses keyed by name.
type Catalog struct {
	bosses map[string]Boss
	names  []string
}

type catalogFile struct {
	Bosses []Boss `yaml:"bosses"`
}

// Load reads a catalog file. An empty path loads the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boss catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse boss catalog: %w", err)
	}

	c := &Catalog{bosses: make(map[string]Boss, len(file.Bosses))}
	for i, b := range file.Bosses {
		if b.Name == "" {
			return nil, fmt.Errorf("boss %d has no name", i)
		}
		if _, dup := c.bosses[b.Name]; dup {
			return nil, fmt.Errorf("duplicate boss %q", b.Name)
		}
		c.bosses[b.Name] = b
		c.names = append(c.names, b.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Names returns every boss name, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Validate fails with ErrUnknownBoss if name is not in the catalog.
func (c *Catalog) Validate(name string) error {
	if _, ok := c.bosses[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBoss, name)
	}
	return nil
}

// Get returns the boss with the given name.
func (c *Catalog) Get(name string) (Boss, error) {
	b, ok := c.bosses[name]
	if !ok {
		return Boss{}, fmt.Errorf("%w: %q", ErrUnknownBoss, name)
	}
	return b, nil
}
