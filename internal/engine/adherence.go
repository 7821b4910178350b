package engine

import (
	"math"

	"tradebook/internal/models"
)

const (
	// A losing trade still counts as "stop respected" when the realized
	// loss distance stays within 110% of the planned stop distance.
	stopToleranceFactor = 1.10

	// A winning trade counts as "target hit" from 95% of the planned
	// target distance onward, mirrored for shorts.
	targetToleranceFactor = 0.05
)

// AdherenceSummary aggregates how closely realized exits followed the
// pre-defined plans across a set of trades with known results.
type AdherenceSummary struct {
	TotalTrades         int     `json:"total_trades"`
	TradesWithPlan      int     `json:"trades_with_plan"`
	StopAdherencePct    float64 `json:"stop_adherence_pct"`     // losses that stayed within the planned stop distance
	TargetAdherencePct  float64 `json:"target_adherence_pct"`   // wins that reached the planned target
	PlannedRiskReward   float64 `json:"planned_risk_reward"`    // average planned target distance / stop distance
	MultiLegTradeCount  int     `json:"multi_leg_trade_count"`  // planned trades executed across more than one exit
	AvgPlanAdherencePct float64 `json:"avg_plan_adherence_pct"` // planned legs matched by registered exits
}

// AnalyzeAdherence computes the adherence statistics over trades that have
// realized results (partial or closed). Every percentage defaults to zero
// when its denominator subset is empty.
func AnalyzeAdherence(trades []models.Trade) AdherenceSummary {
	summary := AdherenceSummary{TotalTrades: len(trades)}

	var stopEligible, stopRespected int
	var targetEligible, targetHit int
	var rrSum float64
	var rrCount int
	var scoreSum float64

	for i := range trades {
		t := &trades[i]

		if t.HasPlan() {
			summary.TradesWithPlan++
		}

		if ok, eligible := RespectedStop(t); eligible {
			stopEligible++
			if ok {
				stopRespected++
			}
		}

		if ok, eligible := HitTarget(t); eligible {
			targetEligible++
			if ok {
				targetHit++
			}
		}

		if t.StopPrice != nil && t.TargetPrice != nil {
			stopDistance := math.Abs(t.EntryPrice - *t.StopPrice)
			if stopDistance > 0 {
				rrSum += math.Abs(*t.TargetPrice-t.EntryPrice) / stopDistance
				rrCount++
			}
		}

		if len(t.PlannedExits) > 0 && len(t.ActualExits) > 1 {
			summary.MultiLegTradeCount++
		}

		scoreSum += planScore(t)
	}

	if stopEligible > 0 {
		summary.StopAdherencePct = float64(stopRespected) / float64(stopEligible) * 100
	}
	if targetEligible > 0 {
		summary.TargetAdherencePct = float64(targetHit) / float64(targetEligible) * 100
	}
	if rrCount > 0 {
		summary.PlannedRiskReward = rrSum / float64(rrCount)
	}
	if len(trades) > 0 {
		summary.AvgPlanAdherencePct = scoreSum / float64(len(trades))
	}

	return summary
}

// RespectedStop reports whether a losing trade's realized loss stayed
// within the planned stop distance plus tolerance. eligible is false when
// the trade has no stop price, no realized loss or no exit price yet.
func RespectedStop(t *models.Trade) (ok, eligible bool) {
	if t.StopPrice == nil || t.Result == nil || t.ExitPrice == nil || *t.Result >= 0 {
		return false, false
	}
	lossDistance := math.Abs(t.EntryPrice - *t.ExitPrice)
	stopDistance := math.Abs(t.EntryPrice - *t.StopPrice)
	return lossDistance <= stopDistance*stopToleranceFactor, true
}

// HitTarget reports whether a winning trade's exit reached the planned
// target within tolerance. The band mirrors by direction: longs must exit
// at or above 95% of the target, shorts at or below 105%.
func HitTarget(t *models.Trade) (ok, eligible bool) {
	if t.TargetPrice == nil || t.Result == nil || t.ExitPrice == nil || *t.Result <= 0 {
		return false, false
	}
	if t.Direction == models.DirectionShort {
		return *t.ExitPrice <= *t.TargetPrice*(1+targetToleranceFactor), true
	}
	return *t.ExitPrice >= *t.TargetPrice*(1-targetToleranceFactor), true
}

// planScore is the fraction of planned legs matched by registered exits,
// as a percentage, capped at 100. A trade without planned legs scores 100
// by convention.
func planScore(t *models.Trade) float64 {
	if len(t.PlannedExits) == 0 {
		return 100
	}
	matched := 0
	for i := range t.ActualExits {
		if t.ActualExits[i].PlannedExitID != nil {
			matched++
		}
	}
	score := float64(matched) / float64(len(t.PlannedExits)) * 100
	if score > 100 {
		score = 100
	}
	return score
}
