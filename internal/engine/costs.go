// Package engine implements the exit reconciliation core: per-contract
// cost and result calculation, the partial-exit state machine, and the
// plan-adherence analytics derived from closed trades. Everything in this
// package is pure; persistence is the service layer's concern.
package engine

import "tradebook/internal/models"

// AssetSpec holds the per-contract constants for one futures contract.
type AssetSpec struct {
	PointValue    float64 // currency per point per contract
	RoundTripCost float64 // currency per contract for a full round trip
}

// CostTable maps an asset code to its contract constants. An unknown asset
// resolves to the zero spec; cost configuration is optional and missing
// entries must not fail a calculation.
type CostTable map[string]AssetSpec

// DefaultTable carries the point values of the contracts the journal ships
// with. Point values are exchange constants; round-trip costs stay zero
// until configured.
func DefaultTable() CostTable {
	return CostTable{
		"WIN": {PointValue: 0.2},
		"WDO": {PointValue: 10.0},
	}
}

// Spec resolves the constants for an asset, falling back to the zero spec.
func (t CostTable) Spec(asset string) AssetSpec {
	if t == nil {
		return AssetSpec{}
	}
	return t[asset]
}

// TradeCosts is the total round-trip cost for a position of the given size.
func (t CostTable) TradeCosts(asset string, contracts int) float64 {
	return t.Spec(asset).RoundTripCost * float64(contracts)
}

// TradeResult computes the cost-adjusted realized result for a position
// exited in full at a single price.
func (t CostTable) TradeResult(asset, direction string, contracts int, entryPrice, exitPrice float64) float64 {
	points := pointDelta(direction, entryPrice, exitPrice)
	return points*t.Spec(asset).PointValue*float64(contracts) - t.TradeCosts(asset, contracts)
}

// ExitOutcome is the realized result of a single exit leg.
type ExitOutcome struct {
	Result float64 // currency, cost-adjusted for this leg's contracts only
	Points float64 // signed price delta in points
}

// ExitResult computes the result of a partial exit scoped to the given
// contract count.
func (t CostTable) ExitResult(asset, direction string, contracts int, entryPrice, exitPrice float64) ExitOutcome {
	points := pointDelta(direction, entryPrice, exitPrice)
	return ExitOutcome{
		Result: points*t.Spec(asset).PointValue*float64(contracts) - t.TradeCosts(asset, contracts),
		Points: points,
	}
}

func pointDelta(direction string, entryPrice, exitPrice float64) float64 {
	if direction == models.DirectionShort {
		return entryPrice - exitPrice
	}
	return exitPrice - entryPrice
}
