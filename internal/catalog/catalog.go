// Package catalog holds the static instrument definitions and the registry
// that maps instrument ids to them. Definitions are constructed once at
// process start, verified by domain.Instrument.Check, and never mutated;
// the registry is safe for unsynchronized concurrent reads.
package catalog

import (
	"fmt"

	"github.com/psych-instrument-server/internal/domain"
)

// Catalog is the read-only instrument registry.
type Catalog struct {
	instruments map[string]*domain.Instrument
	order       []string
}

// Load constructs and verifies every instrument definition. Any definition
// problem aborts the load: the process must refuse to start rather than
// serve an instrument that could silently miscalculate.
func Load() (*Catalog, error) {
	defs := []*domain.Instrument{
		PHQ9(),
		GAD7(),
		PHQ15(),
		QIDS(),
		EPDS(),
		WHO5(),
		PSS10(),
		ISI(),
		AUDIT(),
		CAGE(),
		FTND(),
		OCDS5(),
		ASEX(),
		CGI(),
	}

	c := &Catalog{instruments: make(map[string]*domain.Instrument, len(defs))}
	for _, ins := range defs {
		if err := ins.Check(); err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		if _, dup := c.instruments[ins.ID]; dup {
			return nil, fmt.Errorf("loading catalog: duplicate instrument id %q", ins.ID)
		}
		c.instruments[ins.ID] = ins
		c.order = append(c.order, ins.ID)
	}
	return c, nil
}

// Get returns the instrument with the given id.
func (c *Catalog) Get(id string) (*domain.Instrument, bool) {
	ins, ok := c.instruments[id]
	return ins, ok
}

// IDs lists instrument ids in registration order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// All lists the instruments in registration order.
func (c *Catalog) All() []*domain.Instrument {
	out := make([]*domain.Instrument, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.instruments[id])
	}
	return out
}

// items builds a numbered item list over a shared constraint.
func items(prefix string, constraint domain.Constraint, prompts ...string) []domain.Item {
	out := make([]domain.Item, len(prompts))
	for i, prompt := range prompts {
		out[i] = domain.Item{
			ID:         fmt.Sprintf("%s_%d", prefix, i+1),
			Prompt:     prompt,
			Constraint: constraint,
		}
	}
	return out
}

// ids extracts the item ids in declaration order.
func ids(list []domain.Item) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

// singleSection wraps all items in one presentation group.
func singleSection(id, label string, list []domain.Item) []domain.Section {
	return []domain.Section{{ID: id, Label: label, Items: ids(list)}}
}

// bands is shorthand for an unguarded cutoff table.
func bands(list ...domain.Band) []domain.CutoffTable {
	return []domain.CutoffTable{{Bands: list}}
}

// allIdentical flags answer sets where every listed item carries the same
// response, a common sign of inattentive completion.
func allIdentical(itemIDs []string, message string) domain.ConsistencyCheck {
	return domain.ConsistencyCheck{
		Name:    "all_identical",
		Message: message,
		Predicate: func(a domain.Answers, _ domain.Context) bool {
			first, ok := a[itemIDs[0]]
			if !ok {
				return false
			}
			for _, id := range itemIDs[1:] {
				v, ok := a[id]
				if !ok || v != first {
					return false
				}
			}
			return true
		},
	}
}

// bothEndorsed flags two mutually exclusive polarity items both endorsed at
// or above a threshold.
func bothEndorsed(a, b string, threshold float64, name, message string) domain.ConsistencyCheck {
	return domain.ConsistencyCheck{
		Name:    name,
		Message: message,
		Predicate: func(answers domain.Answers, _ domain.Context) bool {
			va, oka := answers[a]
			vb, okb := answers[b]
			return oka && okb && va >= threshold && vb >= threshold
		},
	}
}
