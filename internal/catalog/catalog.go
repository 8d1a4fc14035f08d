// Package catalog holds the bundled quotes, opportunities and current events
// served when neither the record store nor a news feed can provide them.
package catalog

import (
	"embed"
	"fmt"
	"sync"

	"github.com/david/goodworks/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Catalog struct {
	Quotes        []models.Quote
	Opportunities []models.Opportunity
	Events        []models.CurrentEvent
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load decodes the embedded data files. The result is parsed once and shared;
// accessors hand out copies.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = decode()
	})
	return loaded, loadErr
}

// MustLoad panics if the embedded data is malformed.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func decode() (*Catalog, error) {
	var quotes struct {
		Quotes []models.Quote `yaml:"quotes"`
	}
	if err := readYAML("data/quotes.yaml", &quotes); err != nil {
		return nil, err
	}

	var opps struct {
		Opportunities []models.Opportunity `yaml:"opportunities"`
	}
	if err := readYAML("data/opportunities.yaml", &opps); err != nil {
		return nil, err
	}

	var events struct {
		Events []models.CurrentEvent `yaml:"events"`
	}
	if err := readYAML("data/events.yaml", &events); err != nil {
		return nil, err
	}

	for _, o := range opps.Opportunities {
		for _, c := range o.CauseCategories {
			if !models.IsCauseCategory(string(c)) {
				return nil, fmt.Errorf("opportunity %s: unknown cause category %q", o.ID, c)
			}
		}
	}

	return &Catalog{
		Quotes:        quotes.Quotes,
		Opportunities: opps.Opportunities,
		Events:        events.Events,
	}, nil
}

func readYAML(name string, out any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) QuoteList() []models.Quote {
	out := make([]models.Quote, len(c.Quotes))
	copy(out, c.Quotes)
	return out
}

func (c *Catalog) OpportunityList() []models.Opportunity {
	out := make([]models.Opportunity, len(c.Opportunities))
	copy(out, c.Opportunities)
	return out
}

func (c *Catalog) EventList() []models.CurrentEvent {
	out := make([]models.CurrentEvent, len(c.Events))
	copy(out, c.Events)
	return out
}
