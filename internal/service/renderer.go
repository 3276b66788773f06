package service

import (
	"github.com/psych-instrument-server/internal/domain"
)

// InstrumentStructure is the active-item projection of an instrument for a
// given respondent context, used to drive a presentation layer.
type InstrumentStructure struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Abstract    string            `json:"abstract,omitempty"`
	Sections    []RenderedSection `json:"sections"`
	ActiveItems []string          `json:"active_items"`
}

// RenderedSection is one presentation group with its active items.
type RenderedSection struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Items []RenderedItem `json:"items"`
}

// RenderedItem is one displayable question.
type RenderedItem struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
	Allowed  string `json:"allowed"`
}

// RenderStructure projects the instrument onto the active item set for the
// given context. It uses the same condition evaluation as the validator, so
// structure and validation can never disagree about which items apply.
func RenderStructure(ins *domain.Instrument, ctx domain.Context) *InstrumentStructure {
	env := domain.Env{Context: ctx}
	active := ins.ActiveItems(nil, ctx)

	structure := &InstrumentStructure{
		ID:       ins.ID,
		Name:     ins.Name,
		Abstract: ins.Abstract,
	}
	for _, sec := range ins.Sections {
		rendered := RenderedSection{ID: sec.ID, Label: sec.Label}
		for _, id := range sec.Items {
			item := ins.Item(id)
			if item == nil || !active[id] {
				continue
			}
			rendered.Items = append(rendered.Items, RenderedItem{
				ID:       item.ID,
				Prompt:   item.Prompt,
				Required: ins.Required(item, env),
				Allowed:  item.Constraint.Describe(),
			})
		}
		structure.Sections = append(structure.Sections, rendered)
	}
	for i := range ins.Items {
		if active[ins.Items[i].ID] {
			structure.ActiveItems = append(structure.ActiveItems, ins.Items[i].ID)
		}
	}
	return structure
}
