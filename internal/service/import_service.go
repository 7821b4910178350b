package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"tradebook/internal/models"
	"tradebook/internal/xe"
)

// ImportService loads trades from CSV exports. Rows go through
// TradeService.CreateTrade, so rows carrying an exit price reconcile into
// closed trades like any other registration.
type ImportService struct {
	logger       *zap.Logger
	tradeService *TradeService
}

func NewImportService(tradeService *TradeService, logger *zap.Logger) *ImportService {
	return &ImportService{
		logger:       logger,
		tradeService: tradeService,
	}
}

const importTimeLayout = "2006-01-02 15:04:05"

// tradeRow is one CSV line. Optional numeric columns stay strings so an
// empty cell is distinguishable from zero.
type tradeRow struct {
	Asset       string `csv:"asset"`
	Direction   string `csv:"direction"`
	EntryPrice  string `csv:"entry_price"`
	EntryTime   string `csv:"entry_time"`
	Contracts   int    `csv:"contracts"`
	ExitPrice   string `csv:"exit_price"`
	ExitTime    string `csv:"exit_time"`
	StopPrice   string `csv:"stop_price"`
	TargetPrice string `csv:"target_price"`
	Mep         string `csv:"mep"`
	Men         string `csv:"men"`
	Notes       string `csv:"notes"`
}

// ImportReport summarizes one import run. Rows fail individually; a bad
// line never aborts the rest of the file.
type ImportReport struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV reads trades from r and creates them one by one.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*ImportReport, error) {
	var rows []*tradeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, xe.ErrEmptyImport
	}

	report := &ImportReport{}
	for i, row := range rows {
		in, err := s.rowToInput(row)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", i+2, err))
			continue
		}
		if _, err := s.tradeService.CreateTrade(ctx, in); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", i+2, err))
			continue
		}
		report.Imported++
	}

	s.logger.Info("csv import finished",
		zap.Int("imported", report.Imported),
		zap.Int("failed", report.Failed))

	return report, nil
}

func (s *ImportService) rowToInput(row *tradeRow) (CreateTradeInput, error) {
	var in CreateTradeInput

	direction := strings.ToLower(strings.TrimSpace(row.Direction))
	if direction != models.DirectionLong && direction != models.DirectionShort {
		return in, fmt.Errorf("unknown direction %q", row.Direction)
	}

	entryPrice, err := strconv.ParseFloat(strings.TrimSpace(row.EntryPrice), 64)
	if err != nil {
		return in, fmt.Errorf("bad entry_price %q", row.EntryPrice)
	}

	entryTime, err := time.Parse(importTimeLayout, strings.TrimSpace(row.EntryTime))
	if err != nil {
		return in, fmt.Errorf("bad entry_time %q", row.EntryTime)
	}

	if row.Contracts <= 0 {
		return in, fmt.Errorf("contracts must be positive, got %d", row.Contracts)
	}

	in = CreateTradeInput{
		Asset:      strings.ToUpper(strings.TrimSpace(row.Asset)),
		Direction:  direction,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		Contracts:  row.Contracts,
		Notes:      row.Notes,
	}

	if in.ExitPrice, err = optionalFloat(row.ExitPrice); err != nil {
		return in, fmt.Errorf("bad exit_price %q", row.ExitPrice)
	}
	if in.StopPrice, err = optionalFloat(row.StopPrice); err != nil {
		return in, fmt.Errorf("bad stop_price %q", row.StopPrice)
	}
	if in.TargetPrice, err = optionalFloat(row.TargetPrice); err != nil {
		return in, fmt.Errorf("bad target_price %q", row.TargetPrice)
	}
	if in.Mep, err = optionalFloat(row.Mep); err != nil {
		return in, fmt.Errorf("bad mep %q", row.Mep)
	}
	if in.Men, err = optionalFloat(row.Men); err != nil {
		return in, fmt.Errorf("bad men %q", row.Men)
	}

	if exitTime := strings.TrimSpace(row.ExitTime); exitTime != "" {
		t, err := time.Parse(importTimeLayout, exitTime)
		if err != nil {
			return in, fmt.Errorf("bad exit_time %q", row.ExitTime)
		}
		in.ExitTime = &t
	}

	return in, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
