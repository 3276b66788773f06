package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psych-instrument-server/internal/domain"
)

func TestLoadVerifiesEveryDefinition(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	ids := cat.IDs()
	assert.Len(t, ids, 14)

	for _, id := range ids {
		ins, ok := cat.Get(id)
		require.True(t, ok)
		assert.Equal(t, id, ins.ID)
		assert.NotNil(t, ins.Rule(domain.TotalRuleName), "instrument %q", id)
		assert.NotEmpty(t, ins.Cutoffs, "instrument %q", id)
	}
}

func TestLoadRejectsUnknownID(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	_, ok := cat.Get("mmpi")
	assert.False(t, ok)
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	all := cat.All()
	require.Equal(t, len(cat.IDs()), len(all))
	for i, id := range cat.IDs() {
		assert.Equal(t, id, all[i].ID)
	}
}

func TestEveryDeclaredSubscaleStaysInRange(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	// Structural sanity beyond Check: every rule's referenced items exist
	// and its declared range is not inverted.
	for _, ins := range cat.All() {
		for _, rule := range ins.Rules {
			r := rule.DeclaredRange()
			assert.LessOrEqual(t, r.Min, r.Max, "instrument %q rule %q", ins.ID, rule.RuleName())
			for _, id := range rule.ItemRefs() {
				assert.NotNil(t, ins.Item(id), "instrument %q rule %q item %q", ins.ID, rule.RuleName(), id)
			}
		}
	}
}

func TestCGITableCoversEveryAxisCombination(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	ins, ok := cat.Get("cgi")
	require.True(t, ok)

	rule, ok := ins.Rule(domain.TotalRuleName).(*domain.LookupRule)
	require.True(t, ok)

	seen := make(map[float64]bool)
	for _, row := range rule.Table {
		for _, value := range row {
			assert.True(t, rule.Range.Contains(value))
			seen[value] = true
		}
	}
	// Every efficacy index value 0..16 is reachable.
	for v := 0.0; v <= 16; v++ {
		assert.True(t, seen[v], "value %g unreachable", v)
	}
}
