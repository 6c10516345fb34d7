// Package taxonomy loads the expenditure category catalog used by the
// completion-based classifier.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cfe-etl/internal/models"
)

// Store holds the category catalog in file order.
type Store struct {
	categories []models.CategoryConfig
	byName     map[string]int
}

// Load reads the category catalog from a YAML file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Store from raw YAML.
func Parse(data []byte) (*Store, error) {
	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy has no categories")
	}

	byName := make(map[string]int, len(cfg.Categories))
	for i, c := range cfg.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("taxonomy entry %d has an empty name", i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		byName[c.Name] = i
	}

	return &Store{categories: cfg.Categories, byName: byName}, nil
}

// Names returns the category names in catalog order.
func (s *Store) Names() []string {
	names := make([]string, len(s.categories))
	for i, c := range s.categories {
		names[i] = c.Name
	}
	return names
}

// Contains reports whether name is a known category.
func (s *Store) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of categories.
func (s *Store) Len() int {
	return len(s.categories)
}

// PromptSection renders the catalog as the "categoría / palabras clave" block
// embedded in the classification prompt.
func (s *Store) PromptSection() string {
	var b strings.Builder
	for _, c := range s.categories {
		b.WriteString(c.Name)
		b.WriteString(" / ")
		b.WriteString(strings.Join(c.Keywords, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
