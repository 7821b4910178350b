package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/models"
)

func openTrade(contracts int) *models.Trade {
	return &models.Trade{
		ID:         "01TRADE",
		Asset:      "WIN",
		Direction:  models.DirectionLong,
		EntryPrice: 118000,
		EntryTime:  time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC),
		Contracts:  contracts,
		Status:     models.StatusOpen,
	}
}

// applyReconciliation folds the engine output back into the trade the way
// the store does, so sequential registrations can be exercised in memory.
func applyReconciliation(t *models.Trade, rec *Reconciliation) {
	t.ActualExits = append(t.ActualExits, rec.Exit)
	t.Status = rec.Status
	result := rec.TotalResult
	t.Result = &result
	if rec.ExitPrice != nil {
		t.ExitPrice = rec.ExitPrice
		t.ExitTime = rec.ExitTime
	}
}

func TestRegisterExitPartialThenClosed(t *testing.T) {
	table := testTable()
	trade := openTrade(10)

	rec, err := RegisterExit(table, trade, ExitRequest{
		ExitType:  models.ExitTypePartial,
		Price:     118100,
		Contracts: 4,
		ExitTime:  trade.EntryTime.Add(10 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, rec.Status)
	assert.Equal(t, 6, rec.Remaining)
	assert.Nil(t, rec.ExitPrice)
	assert.InDelta(t, 74.0, rec.Exit.Result, 1e-9)
	assert.Equal(t, 100.0, rec.Exit.Points)
	applyReconciliation(trade, rec)

	rec, err = RegisterExit(table, trade, ExitRequest{
		ExitType:  models.ExitTypeManual,
		Price:     117950,
		Contracts: 6,
		ExitTime:  trade.EntryTime.Add(25 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, rec.Status)
	assert.Equal(t, 0, rec.Remaining)
	assert.InDelta(t, -69.0, rec.Exit.Result, 1e-9)
	assert.Equal(t, -50.0, rec.Exit.Points)

	// Cumulative result is the sum of the per-leg results: 74 - 69 = 5.
	assert.InDelta(t, 5.0, rec.TotalResult, 1e-9)

	// Weighted average exit price: (4*118100 + 6*117950) / 10.
	require.NotNil(t, rec.ExitPrice)
	assert.InDelta(t, 118010.0, *rec.ExitPrice, 1e-9)
	require.NotNil(t, rec.ExitTime)
	assert.Equal(t, trade.EntryTime.Add(25*time.Minute), *rec.ExitTime)
}

func TestRegisterExitWeightedAverage(t *testing.T) {
	table := CostTable{"WIN": {PointValue: 0.2}}
	trade := openTrade(10)

	rec, err := RegisterExit(table, trade, ExitRequest{Price: 100, Contracts: 4, ExitTime: time.Now()})
	require.NoError(t, err)
	applyReconciliation(trade, rec)

	rec, err = RegisterExit(table, trade, ExitRequest{Price: 106, Contracts: 6, ExitTime: time.Now()})
	require.NoError(t, err)
	require.NotNil(t, rec.ExitPrice)
	assert.InDelta(t, 103.6, *rec.ExitPrice, 1e-9)
}

func TestRegisterExitResultAdditivity(t *testing.T) {
	table := testTable()
	trade := openTrade(10)

	prices := []float64{118120, 118080, 117960, 118040}
	sizes := []int{2, 3, 4, 1}

	sum := 0.0
	for i := range prices {
		rec, err := RegisterExit(table, trade, ExitRequest{
			Price:     prices[i],
			Contracts: sizes[i],
			ExitTime:  trade.EntryTime.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		sum += rec.Exit.Result
		assert.InDelta(t, sum, rec.TotalResult, 1e-9)
		applyReconciliation(trade, rec)
	}

	assert.Equal(t, models.StatusClosed, trade.Status)
	assert.Equal(t, 0, trade.RemainingContracts())
}

func TestRegisterExitRejectsClosedTrade(t *testing.T) {
	table := testTable()
	trade := openTrade(10)

	rec, err := RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: 10, ExitTime: time.Now()})
	require.NoError(t, err)
	applyReconciliation(trade, rec)

	_, err = RegisterExit(table, trade, ExitRequest{Price: 118200, Contracts: 1, ExitTime: time.Now()})
	assert.ErrorIs(t, err, ErrTradeClosed)
	assert.True(t, IsValidationError(err))
}

func TestRegisterExitRejectsBadContractCounts(t *testing.T) {
	table := testTable()
	trade := openTrade(10)

	_, err := RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: 0, ExitTime: time.Now()})
	assert.ErrorIs(t, err, ErrNonPositiveContracts)

	_, err = RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: -3, ExitTime: time.Now()})
	assert.ErrorIs(t, err, ErrNonPositiveContracts)

	_, err = RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: 11, ExitTime: time.Now()})
	assert.ErrorIs(t, err, ErrContractsExceedRemaining)

	// Remaining shrinks as exits accumulate.
	rec, err := RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: 7, ExitTime: time.Now()})
	require.NoError(t, err)
	applyReconciliation(trade, rec)

	_, err = RegisterExit(table, trade, ExitRequest{Price: 118100, Contracts: 4, ExitTime: time.Now()})
	assert.ErrorIs(t, err, ErrContractsExceedRemaining)
}

func TestRegisterExitKeepsPlannedExitReference(t *testing.T) {
	table := testTable()
	trade := openTrade(5)
	legID := "01LEG"

	rec, err := RegisterExit(table, trade, ExitRequest{
		ExitType:      models.ExitTypeTarget,
		Price:         118300,
		Contracts:     5,
		ExitTime:      time.Now(),
		PlannedExitID: &legID,
		Notes:         "first target",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.Exit.PlannedExitID)
	assert.Equal(t, legID, *rec.Exit.PlannedExitID)
	assert.Equal(t, "first target", rec.Exit.Notes)
	assert.Equal(t, trade.ID, rec.Exit.TradeID)
}
