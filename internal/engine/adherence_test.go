package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradebook/internal/models"
)

func ptr(v float64) *float64 { return &v }

func closedTrade(direction string, entry, exit, result float64) models.Trade {
	return models.Trade{
		Asset:      "WIN",
		Direction:  direction,
		EntryPrice: entry,
		Contracts:  1,
		ExitPrice:  ptr(exit),
		Result:     ptr(result),
		Status:     models.StatusClosed,
	}
}

func TestAnalyzeAdherenceEmptyInput(t *testing.T) {
	summary := AnalyzeAdherence(nil)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Equal(t, 0.0, summary.StopAdherencePct)
	assert.Equal(t, 0.0, summary.TargetAdherencePct)
	assert.Equal(t, 0.0, summary.PlannedRiskReward)
	assert.Equal(t, 0.0, summary.AvgPlanAdherencePct)
}

func TestStopAdherenceToleranceBand(t *testing.T) {
	// Stop planned 100 points below entry. A loss of 105 points is inside
	// the 10% band, a loss of 120 points is not.
	within := closedTrade(models.DirectionLong, 118000, 117895, -21)
	within.StopPrice = ptr(117900.0)

	beyond := closedTrade(models.DirectionLong, 118000, 117880, -24)
	beyond.StopPrice = ptr(117900.0)

	// Winning trades never enter the stop subset.
	winner := closedTrade(models.DirectionLong, 118000, 118100, 20)
	winner.StopPrice = ptr(117900.0)

	summary := AnalyzeAdherence([]models.Trade{within, beyond, winner})
	assert.Equal(t, 50.0, summary.StopAdherencePct)
}

func TestTargetAdherenceMirrorsDirection(t *testing.T) {
	// Long: exit must reach 95% of the target price.
	longHit := closedTrade(models.DirectionLong, 100, 96, 10)
	longHit.TargetPrice = ptr(100.0)

	longMiss := closedTrade(models.DirectionLong, 90, 94, 8)
	longMiss.TargetPrice = ptr(100.0)

	// Short: exit must come down to 105% of the target.
	shortHit := closedTrade(models.DirectionShort, 110, 104, 12)
	shortHit.TargetPrice = ptr(100.0)

	shortMiss := closedTrade(models.DirectionShort, 110, 106, 8)
	shortMiss.TargetPrice = ptr(100.0)

	summary := AnalyzeAdherence([]models.Trade{longHit, longMiss, shortHit, shortMiss})
	assert.Equal(t, 50.0, summary.TargetAdherencePct)
}

func TestPlannedRiskReward(t *testing.T) {
	// Target 300 points away, stop 100 points away: R:R = 3.
	rr3 := closedTrade(models.DirectionLong, 118000, 118300, 60)
	rr3.StopPrice = ptr(117900.0)
	rr3.TargetPrice = ptr(118300.0)

	// R:R = 1.
	rr1 := closedTrade(models.DirectionShort, 118000, 117800, 40)
	rr1.StopPrice = ptr(118100.0)
	rr1.TargetPrice = ptr(117900.0)

	// Zero stop distance is skipped, not divided by.
	degenerate := closedTrade(models.DirectionLong, 118000, 118050, 10)
	degenerate.StopPrice = ptr(118000.0)
	degenerate.TargetPrice = ptr(118100.0)

	summary := AnalyzeAdherence([]models.Trade{rr3, rr1, degenerate})
	assert.InDelta(t, 2.0, summary.PlannedRiskReward, 1e-9)
}

func TestAvgPlanAdherenceDegenerateCase(t *testing.T) {
	// No planned legs: scores 100 by convention regardless of exits.
	unplanned := closedTrade(models.DirectionLong, 118000, 118100, 20)
	unplanned.ActualExits = []models.ActualExit{{Contracts: 1, Price: 118100}}

	summary := AnalyzeAdherence([]models.Trade{unplanned})
	assert.Equal(t, 100.0, summary.AvgPlanAdherencePct)
}

func TestAvgPlanAdherenceCountsMatchedLegs(t *testing.T) {
	legA := "01LEGA"

	// Two planned legs, one exit matched to a leg: 50%.
	half := closedTrade(models.DirectionLong, 118000, 118100, 20)
	half.PlannedExits = []models.PlannedExit{
		{ID: legA, Seq: 1, ExitType: models.ExitTypeTarget, Price: 118100, Contracts: 1},
		{ID: "01LEGB", Seq: 2, ExitType: models.ExitTypeTarget, Price: 118200, Contracts: 1},
	}
	half.ActualExits = []models.ActualExit{
		{Contracts: 1, Price: 118100, PlannedExitID: &legA},
		{Contracts: 1, Price: 118120},
	}

	// Unplanned trade contributes 100.
	unplanned := closedTrade(models.DirectionShort, 118000, 117900, 20)

	summary := AnalyzeAdherence([]models.Trade{half, unplanned})
	assert.InDelta(t, 75.0, summary.AvgPlanAdherencePct, 1e-9)
	assert.Equal(t, 1, summary.MultiLegTradeCount)
	assert.Equal(t, 1, summary.TradesWithPlan)
}

func TestAvgPlanAdherenceCapsAtFullMatch(t *testing.T) {
	legA := "01LEGA"

	// One planned leg filled across two matched exits stays at 100.
	scaled := closedTrade(models.DirectionLong, 118000, 118100, 20)
	scaled.PlannedExits = []models.PlannedExit{
		{ID: legA, Seq: 1, ExitType: models.ExitTypeTarget, Price: 118100, Contracts: 2},
	}
	scaled.ActualExits = []models.ActualExit{
		{Contracts: 1, Price: 118090, PlannedExitID: &legA},
		{Contracts: 1, Price: 118110, PlannedExitID: &legA},
	}

	summary := AnalyzeAdherence([]models.Trade{scaled})
	assert.Equal(t, 100.0, summary.AvgPlanAdherencePct)
}

func TestMultiLegTradeCountRequiresPlannedLegs(t *testing.T) {
	// Multiple exits without a multi-leg plan do not count.
	unplanned := closedTrade(models.DirectionLong, 118000, 118100, 20)
	unplanned.ActualExits = []models.ActualExit{
		{Contracts: 1, Price: 118080},
		{Contracts: 1, Price: 118120},
	}

	summary := AnalyzeAdherence([]models.Trade{unplanned})
	assert.Equal(t, 0, summary.MultiLegTradeCount)
}
