package service

import (
	"context"
	"math"

	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradebook/internal/engine"
	"tradebook/internal/repo"
)

// StatsService computes journal analytics over trades with realized
// results: plan-adherence statistics from the engine plus a classic
// performance summary.
type StatsService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo
}

func NewStatsService(db *gorm.DB, logger *zap.Logger) *StatsService {
	return &StatsService{
		logger:    logger,
		Service:   orz.NewService(db),
		TradeRepo: repo.NewTradeRepo(db),
	}
}

// PerformanceSummary aggregates realized results the way a trading
// journal's dashboard presents them.
type PerformanceSummary struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	BreakEven    int     `json:"break_even"`
	WinRate      float64 `json:"win_rate"` // fraction 0..1
	NetResult    float64 `json:"net_result"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"` // positive magnitude
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"` // positive magnitude
	TotalCosts   float64 `json:"total_costs"`
}

// GetAdherenceStats runs the plan-adherence analyzer over every trade
// with a realized result.
func (s *StatsService) GetAdherenceStats(ctx context.Context) (*engine.AdherenceSummary, error) {
	trades, err := s.TradeRepo.FindWithResults(ctx)
	if err != nil {
		return nil, err
	}
	summary := engine.AnalyzeAdherence(trades)
	return &summary, nil
}

// GetPerformanceSummary aggregates wins, losses and cost totals over
// every trade with a realized result.
func (s *StatsService) GetPerformanceSummary(ctx context.Context) (*PerformanceSummary, error) {
	trades, err := s.TradeRepo.FindWithResults(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PerformanceSummary{TotalTrades: len(trades)}
	for i := range trades {
		t := &trades[i]
		if t.Result == nil {
			continue
		}
		result := *t.Result
		summary.NetResult += result
		summary.TotalCosts += t.Costs

		switch {
		case result > 0:
			summary.Wins++
			summary.GrossProfit += result
		case result < 0:
			summary.Losses++
			summary.GrossLoss += math.Abs(result)
		default:
			summary.BreakEven++
		}
	}

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.TotalTrades)
	}
	if summary.Wins > 0 {
		summary.AvgWin = summary.GrossProfit / float64(summary.Wins)
	}
	if summary.Losses > 0 {
		summary.AvgLoss = summary.GrossLoss / float64(summary.Losses)
	}
	if summary.GrossLoss > 0 {
		summary.ProfitFactor = summary.GrossProfit / summary.GrossLoss
	}

	return summary, nil
}
