// Package catalog loads the static marketplace data: service categories,
// the contractor roster, the signals feed, testimonials and the demo
// messages and leads every new workspace starts with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/AirLinkPros/airlink-backend/internal/findpro"
	"github.com/AirLinkPros/airlink-backend/internal/signals"
	"github.com/AirLinkPros/airlink-backend/internal/workspace"
)

//go:embed data/catalog.yaml
var embedded []byte

type Testimonial struct {
	Name    string `json:"name" yaml:"name"`
	Company string `json:"company,omitempty" yaml:"company"`
	Quote   string `json:"quote" yaml:"quote"`
}

// Catalog is read-only once loaded and safe for concurrent readers.
type Catalog struct {
	Categories   []string             `json:"categories" yaml:"categories"`
	Contractors  []findpro.Contractor `json:"contractors" yaml:"contractors"`
	Signals      []signals.Event      `json:"signals" yaml:"signals"`
	Testimonials []Testimonial        `json:"testimonials" yaml:"testimonials"`
	Messages     []workspace.Message  `json:"messages" yaml:"messages"`
	Leads        []workspace.Lead     `json:"leads" yaml:"leads"`
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// Load reads the catalog at path, or the embedded demo catalog when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross-references the YAML decoder cannot: unique IDs,
// known categories, ratings in range and lead stages.
func (c *Catalog) Validate() error {
	cats := make(map[string]struct{}, len(c.Categories))
	for _, name := range c.Categories {
		cats[name] = struct{}{}
	}

	seen := map[string]struct{}{}
	for _, p := range c.Contractors {
		if p.ID == "" {
			return fmt.Errorf("%w: contractor %q has no id", ErrInvalidCatalog, p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate contractor id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Rating < 0 || p.Rating > 5 {
			return fmt.Errorf("%w: contractor %s rating %.1f outside 0-5", ErrInvalidCatalog, p.ID, p.Rating)
		}
		if p.Years < 0 {
			return fmt.Errorf("%w: contractor %s has negative years", ErrInvalidCatalog, p.ID)
		}
		for _, s := range p.Services {
			if _, ok := cats[s]; !ok {
				return fmt.Errorf("%w: contractor %s offers unknown category %q", ErrInvalidCatalog, p.ID, s)
			}
		}
	}

	seen = map[string]struct{}{}
	for _, e := range c.Signals {
		if e.ID == "" || e.Type == "" {
			return fmt.Errorf("%w: signal %q needs an id and a type", ErrInvalidCatalog, e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate signal id %q", ErrInvalidCatalog, e.ID)
		}
		seen[e.ID] = struct{}{}
		if _, err := signals.ParseEventType(string(e.Type)); err != nil {
			return fmt.Errorf("%w: signal %s: %v", ErrInvalidCatalog, e.ID, err)
		}
	}

	for _, l := range c.Leads {
		if _, err := workspace.ParseStage(string(l.Stage)); err != nil {
			return fmt.Errorf("%w: lead %s: %v", ErrInvalidCatalog, l.ID, err)
		}
	}
	return nil
}

// WorkspaceSeed is the initial state of every new workspace.
func (c *Catalog) WorkspaceSeed() workspace.State {
	return workspace.NewState(c.Messages, c.Leads)
}
