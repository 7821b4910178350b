package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/models"
)

func filterFixture() []models.Trade {
	respected := closedTrade(models.DirectionLong, 118000, 117895, -21)
	respected.ID = "respected"
	respected.StopPrice = ptr(117900.0)

	exceeded := closedTrade(models.DirectionLong, 118000, 117850, -30)
	exceeded.ID = "exceeded"
	exceeded.StopPrice = ptr(117900.0)

	hit := closedTrade(models.DirectionLong, 118000, 118300, 60)
	hit.ID = "hit"
	hit.TargetPrice = ptr(118300.0)

	unplanned := closedTrade(models.DirectionShort, 118000, 117900, 20)
	unplanned.ID = "unplanned"

	return []models.Trade{respected, exceeded, hit, unplanned}
}

func ids(trades []models.Trade) []string {
	out := make([]string, 0, len(trades))
	for i := range trades {
		out = append(out, trades[i].ID)
	}
	return out
}

func TestFilterAllIsIdentity(t *testing.T) {
	trades := filterFixture()

	assert.Equal(t, ids(trades), ids(FilterByAdherence(trades, AdherenceAll)))
	assert.Equal(t, ids(trades), ids(FilterByAdherence(trades, "")))
	assert.Equal(t, ids(trades), ids(FilterByAdherence(trades, "bogus")))
}

func TestFilterIsIdempotent(t *testing.T) {
	trades := filterFixture()

	for _, category := range []string{
		AdherenceWithPlan, AdherenceWithoutPlan,
		AdherenceRespectedStop, AdherenceHitTarget, AdherenceExceededStop,
	} {
		once := FilterByAdherence(trades, category)
		twice := FilterByAdherence(once, category)
		assert.Equal(t, ids(once), ids(twice), "category %s", category)
	}
}

func TestFilterCategories(t *testing.T) {
	trades := filterFixture()

	assert.Equal(t, []string{"respected", "exceeded", "hit"}, ids(FilterByAdherence(trades, AdherenceWithPlan)))
	assert.Equal(t, []string{"unplanned"}, ids(FilterByAdherence(trades, AdherenceWithoutPlan)))
	assert.Equal(t, []string{"respected"}, ids(FilterByAdherence(trades, AdherenceRespectedStop)))
	assert.Equal(t, []string{"exceeded"}, ids(FilterByAdherence(trades, AdherenceExceededStop)))
	assert.Equal(t, []string{"hit"}, ids(FilterByAdherence(trades, AdherenceHitTarget)))
}

func TestSortTradesByColumn(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{ID: "b", Asset: "WIN", Contracts: 5, EntryTime: base.Add(2 * time.Hour), Result: ptr(10.0)},
		{ID: "a", Asset: "WDO", Contracts: 2, EntryTime: base, Result: ptr(-5.0)},
		{ID: "c", Asset: "WIN", Contracts: 8, EntryTime: base.Add(time.Hour), Result: nil},
	}

	SortTrades(trades, SortByEntryTime, false)
	assert.Equal(t, []string{"a", "c", "b"}, ids(trades))

	SortTrades(trades, SortByContracts, true)
	assert.Equal(t, []string{"c", "b", "a"}, ids(trades))

	// Unset results sort before any value.
	SortTrades(trades, SortByResult, false)
	assert.Equal(t, []string{"c", "a", "b"}, ids(trades))
}

func TestSortTradesIsStable(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{ID: "first", Asset: "WIN", EntryTime: base},
		{ID: "second", Asset: "WIN", EntryTime: base.Add(time.Minute)},
		{ID: "third", Asset: "WIN", EntryTime: base.Add(2 * time.Minute)},
	}

	// Equal sort keys keep insertion order.
	SortTrades(trades, SortByAsset, false)
	require.Equal(t, []string{"first", "second", "third"}, ids(trades))

	SortTrades(trades, SortByAsset, true)
	require.Equal(t, []string{"first", "second", "third"}, ids(trades))
}
