package engine

import (
	"math"
	"sort"

	"tradebook/internal/models"
)

// Plan-adherence filter categories.
const (
	AdherenceAll           = "all"
	AdherenceWithPlan      = "with_plan"
	AdherenceWithoutPlan   = "without_plan"
	AdherenceRespectedStop = "respected_stop"
	AdherenceHitTarget     = "hit_target"
	AdherenceExceededStop  = "exceeded_stop"
)

// Sortable trade columns.
const (
	SortByEntryTime  = "entry_time"
	SortByAsset      = "asset"
	SortByDirection  = "direction"
	SortByContracts  = "contracts"
	SortByEntryPrice = "entry_price"
	SortByExitPrice  = "exit_price"
	SortByMep        = "mep"
	SortByMen        = "men"
	SortByResult     = "result"
)

// FilterByAdherence projects the trade collection down to one
// plan-adherence category, reusing the same per-trade tolerance bands as
// the analyzer. "all", an empty category and unknown categories return the
// collection unchanged.
func FilterByAdherence(trades []models.Trade, category string) []models.Trade {
	switch category {
	case "", AdherenceAll:
		return trades
	case AdherenceWithPlan, AdherenceWithoutPlan, AdherenceRespectedStop, AdherenceHitTarget, AdherenceExceededStop:
	default:
		return trades
	}

	out := make([]models.Trade, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		keep := false
		switch category {
		case AdherenceWithPlan:
			keep = t.HasPlan()
		case AdherenceWithoutPlan:
			keep = !t.HasPlan()
		case AdherenceRespectedStop:
			ok, eligible := RespectedStop(t)
			keep = eligible && ok
		case AdherenceExceededStop:
			ok, eligible := RespectedStop(t)
			keep = eligible && !ok
		case AdherenceHitTarget:
			ok, eligible := HitTarget(t)
			keep = eligible && ok
		}
		if keep {
			out = append(out, trades[i])
		}
	}
	return out
}

// SortTrades orders the collection in place by one column. The underlying
// sort is stable, so equal keys keep their relative order. Unset nullable
// columns sort before any value.
func SortTrades(trades []models.Trade, column string, desc bool) {
	less := lessFunc(column)
	sort.SliceStable(trades, func(i, j int) bool {
		if desc {
			return less(&trades[j], &trades[i])
		}
		return less(&trades[i], &trades[j])
	})
}

func lessFunc(column string) func(a, b *models.Trade) bool {
	switch column {
	case SortByAsset:
		return func(a, b *models.Trade) bool { return a.Asset < b.Asset }
	case SortByDirection:
		return func(a, b *models.Trade) bool { return a.Direction < b.Direction }
	case SortByContracts:
		return func(a, b *models.Trade) bool { return a.Contracts < b.Contracts }
	case SortByEntryPrice:
		return func(a, b *models.Trade) bool { return a.EntryPrice < b.EntryPrice }
	case SortByExitPrice:
		return func(a, b *models.Trade) bool { return nullableValue(a.ExitPrice) < nullableValue(b.ExitPrice) }
	case SortByMep:
		return func(a, b *models.Trade) bool { return nullableValue(a.Mep) < nullableValue(b.Mep) }
	case SortByMen:
		return func(a, b *models.Trade) bool { return nullableValue(a.Men) < nullableValue(b.Men) }
	case SortByResult:
		return func(a, b *models.Trade) bool { return nullableValue(a.Result) < nullableValue(b.Result) }
	default:
		return func(a, b *models.Trade) bool { return a.EntryTime.Before(b.EntryTime) }
	}
}

func nullableValue(p *float64) float64 {
	if p == nil {
		return math.Inf(-1)
	}
	return *p
}
