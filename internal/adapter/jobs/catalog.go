// Package jobs loads the job posting catalog from a YAML file at startup.
// Postings are reference data: loaded once, validated, then served read-only.
package jobs

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// catalogFile is the YAML document shape.
type catalogFile struct {
	Jobs []postingDoc `yaml:"jobs"`
}

// postingDoc wraps a posting with validation tags. Validation lives here so
// the domain entity stays tag-free of loader concerns.
type postingDoc struct {
	domain.JobPosting `yaml:",inline"`
}

type postingRules struct {
	ID         string `validate:"required"`
	Title      string `validate:"required"`
	Employment string `validate:"required,oneof=full-time part-time contract internship"`
	Salary     struct {
		Min      float64 `validate:"gte=0"`
		Max      float64 `validate:"gtefield=Min"`
		Currency string  `validate:"required,len=3"`
	}
}

// Catalog is an immutable in-memory job catalog.
type Catalog struct {
	byID  map[string]domain.JobPosting
	order []string
}

// Load reads and validates the catalog from path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from config, not request input
	if err != nil {
		return nil, fmt.Errorf("op=jobs.load: read %s: %w", path, err)
	}
	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("op=jobs.load: parse: %w", err)
	}
	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("op=jobs.load: %w: catalog has no postings", domain.ErrInvalidArgument)
	}

	v := validator.New()
	c := &Catalog{byID: make(map[string]domain.JobPosting, len(doc.Jobs))}
	for i, p := range doc.Jobs {
		rules := postingRules{ID: p.ID, Title: p.Title, Employment: string(p.EmploymentType)}
		rules.Salary.Min = p.Salary.Min
		rules.Salary.Max = p.Salary.Max
		rules.Salary.Currency = p.Salary.Currency
		if err := v.Struct(rules); err != nil {
			return nil, fmt.Errorf("op=jobs.load: posting %d: %w: %v", i, domain.ErrInvalidArgument, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("op=jobs.load: %w: duplicate posting id %q", domain.ErrInvalidArgument, p.ID)
		}
		c.byID[p.ID] = p.JobPosting
		c.order = append(c.order, p.ID)
	}
	sort.Strings(c.order)
	return c, nil
}

// Get returns the posting with the given id.
func (c *Catalog) Get(id string) (domain.JobPosting, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.JobPosting{}, fmt.Errorf("op=jobs.get: id=%s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// List returns all postings ordered by id.
func (c *Catalog) List() []domain.JobPosting {
	out := make([]domain.JobPosting, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
