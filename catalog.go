package cookierinse

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DomainRule maps any domain containing one of Patterns to the canonical
// main domain Name. Rules are evaluated in order, first match wins.
type DomainRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Service identifies a sub-product of a site by domain substrings.
type Service struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Site describes what is known about one main domain: its services (checked
// in order) and the cookie-name substrings that mark authentication cookies.
type Site struct {
	Services []Service `yaml:"services"`
	Auth     []string  `yaml:"auth"`
}

// SitePoints awards Points when Site has any cookies.
type SitePoints struct {
	Site   string `yaml:"site"`
	Points int    `yaml:"points"`
}

// ServicePoints awards Points when Service was detected for Site.
type ServicePoints struct {
	Site    string `yaml:"site"`
	Service string `yaml:"service"`
	Points  int    `yaml:"points"`
}

// CategoryBonus awards Points when at least MinSites of Sites are present.
// Name and Points are carried as structured data; the "+N Name" reason text
// is derived from them, never parsed back.
type CategoryBonus struct {
	Name     string   `yaml:"name"`
	Points   int      `yaml:"points"`
	Sites    []string `yaml:"sites"`
	MinSites int      `yaml:"min_sites"`
}

// Level is one rung of the footprint ladder. Levels are ordered by
// descending MinScore; the last entry is the catch-all lowest tier.
type Level struct {
	Name     string `yaml:"name"`
	MinScore int    `yaml:"min_score"`
}

// ScoringRules is the additive scoring table.
type ScoringRules struct {
	Sites     []SitePoints    `yaml:"sites"`
	Services  []ServicePoints `yaml:"services"`
	Bonuses   []CategoryBonus `yaml:"bonuses"`
	AuthBonus int             `yaml:"auth_bonus"`
	Levels    []Level         `yaml:"levels"`
}

// Category names a group of related sites. Categories are ordered; a site
// belonging to several is reported under the first.
type Category struct {
	Name  string   `yaml:"name"`
	Sites []string `yaml:"sites"`
}

// Catalog is the immutable pattern and scoring configuration. It is loaded
// once and shared read-only by all invocations; nothing mutates it after
// load.
type Catalog struct {
	DomainRules  []DomainRule    `yaml:"domain_rules"`
	Sites        map[string]Site `yaml:"sites"`
	ServiceOrder []string        `yaml:"service_order"`
	Categories   []Category      `yaml:"categories"`
	Trackers     []string        `yaml:"trackers"`
	Scoring      ScoringRules    `yaml:"scoring"`

	serviceRank map[string]int
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := parseCatalog(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is validated by tests; a parse failure here
		// is a build defect.
		panic(fmt.Sprintf("cookierinse: embedded catalog invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cookierinse: read catalog %s: %w", path, err)
	}
	c, err := parseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("cookierinse: parse catalog %s: %w", path, err)
	}
	return c, nil
}

func parseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.serviceRank = make(map[string]int, len(c.ServiceOrder))
	for i, name := range c.ServiceOrder {
		c.serviceRank[name] = i
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.DomainRules) == 0 {
		return errors.New("no domain rules")
	}
	for _, r := range c.DomainRules {
		if r.Name == "" || len(r.Patterns) == 0 {
			return fmt.Errorf("domain rule %q has no patterns", r.Name)
		}
	}
	if len(c.Scoring.Levels) == 0 {
		return errors.New("no score levels")
	}
	last := c.Scoring.Levels[len(c.Scoring.Levels)-1]
	if last.MinScore > 0 {
		return fmt.Errorf("last level %q must be a catch-all (min_score 0, got %d)", last.Name, last.MinScore)
	}
	for i := 1; i < len(c.Scoring.Levels); i++ {
		if c.Scoring.Levels[i].MinScore >= c.Scoring.Levels[i-1].MinScore {
			return fmt.Errorf("levels must be ordered by descending min_score (%q >= %q)",
				c.Scoring.Levels[i].Name, c.Scoring.Levels[i-1].Name)
		}
	}
	for _, b := range c.Scoring.Bonuses {
		if b.MinSites <= 0 || b.MinSites > len(b.Sites) {
			return fmt.Errorf("bonus %q: min_sites %d out of range", b.Name, b.MinSites)
		}
	}
	return nil
}

// serviceSortRank returns the display rank of a service name. Services not
// in the configured order sort after all configured ones.
func (c *Catalog) serviceSortRank(name string) int {
	if r, ok := c.serviceRank[name]; ok {
		return r
	}
	return len(c.ServiceOrder)
}
