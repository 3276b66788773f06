package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psych-instrument-server/internal/domain"
)

func renderedItemIDs(structure *InstrumentStructure) []string {
	var out []string
	for _, sec := range structure.Sections {
		for _, item := range sec.Items {
			out = append(out, item.ID)
		}
	}
	return out
}

func TestRenderStructureProjectsActiveItems(t *testing.T) {
	ins := loadInstrument(t, "asex")

	structure := RenderStructure(ins, domain.Context{"gender": "M"})

	items := renderedItemIDs(structure)
	assert.Contains(t, items, "asex_3m")
	assert.NotContains(t, items, "asex_3f")
	assert.Equal(t, items, structure.ActiveItems)
}

func TestRenderStructureShowsBothVariantsWithoutContext(t *testing.T) {
	ins := loadInstrument(t, "asex")

	structure := RenderStructure(ins, nil)

	items := renderedItemIDs(structure)
	assert.Contains(t, items, "asex_3f")
	assert.Contains(t, items, "asex_3m")

	// Neither optional variant is marked required.
	for _, sec := range structure.Sections {
		for _, item := range sec.Items {
			if item.ID == "asex_3f" || item.ID == "asex_3m" {
				assert.False(t, item.Required, item.ID)
			}
		}
	}
}

func TestRenderStructureShowsBothVariantsForUnrecognizedContext(t *testing.T) {
	ins := loadInstrument(t, "asex")

	structure := RenderStructure(ins, domain.Context{"gender": "X"})

	items := renderedItemIDs(structure)
	assert.Contains(t, items, "asex_3f")
	assert.Contains(t, items, "asex_3m")
}

func TestRenderStructureMatchesValidatorActiveSet(t *testing.T) {
	ins := loadInstrument(t, "phq15")
	ctx := domain.Context{"gender": "M"}

	structure := RenderStructure(ins, ctx)
	active := ins.ActiveItems(nil, ctx)

	require.Len(t, structure.ActiveItems, len(active))
	for _, id := range structure.ActiveItems {
		assert.True(t, active[id])
	}
	assert.NotContains(t, structure.ActiveItems, "phq15_4")
}
