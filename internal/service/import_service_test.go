package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradebook/internal/models"
	"tradebook/internal/xe"
)

const importHeader = "asset,direction,entry_price,entry_time,contracts,exit_price,exit_time,stop_price,target_price,mep,men,notes\n"

func newTestImportService(t *testing.T) (*ImportService, *TradeService) {
	t.Helper()
	tradeService := newTestTradeService(t)
	return NewImportService(tradeService, zap.NewNop()), tradeService
}

func TestImportCSV(t *testing.T) {
	importService, tradeService := newTestImportService(t)
	ctx := context.Background()

	csv := importHeader +
		"WIN,long,118000,2025-03-10 09:15:00,2,118370,2025-03-10 09:45:00,117800,118400,420,-80,morning scalp\n" +
		"wdo,short,5100,2025-03-10 10:00:00,1,,,5110,5080,,,still open\n"

	report, err := importService.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.Errors)

	trades, err := tradeService.ListTrades(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// newest-first: the open WDO row comes back first
	open := trades[0]
	assert.Equal(t, "WDO", open.Asset)
	assert.Equal(t, models.DirectionShort, open.Direction)
	assert.Equal(t, models.StatusOpen, open.Status)

	closed := trades[1]
	assert.Equal(t, "WIN", closed.Asset)
	assert.Equal(t, models.StatusClosed, closed.Status)
	require.NotNil(t, closed.Result)
	// 370 points * 0.2 * 2 contracts - 1.5 * 2 costs
	assert.InDelta(t, 145.0, *closed.Result, 1e-9)
	require.NotNil(t, closed.Mep)
	assert.InDelta(t, 420, *closed.Mep, 1e-9)
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	importService, tradeService := newTestImportService(t)
	ctx := context.Background()

	csv := importHeader +
		"WIN,long,118000,2025-03-10 09:15:00,1,,,,,,,good row\n" +
		"WIN,sideways,118000,2025-03-10 09:20:00,1,,,,,,,bad direction\n" +
		"WIN,long,not-a-price,2025-03-10 09:25:00,1,,,,,,,bad price\n"

	report, err := importService.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "line 3")
	assert.Contains(t, report.Errors[1], "line 4")

	trades, err := tradeService.ListTrades(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestImportCSVEmptyFile(t *testing.T) {
	importService, _ := newTestImportService(t)

	_, err := importService.ImportCSV(context.Background(), strings.NewReader(importHeader))
	require.ErrorIs(t, err, xe.ErrEmptyImport)
}
