package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tradebook/internal/engine"
	"tradebook/internal/models"
	"tradebook/internal/repo"
	"tradebook/internal/xe"
)

// TradeService owns the trade lifecycle: creation, plan replacement, exit
// registration through the reconciliation engine, and removal. All
// multi-row writes run inside a single transaction and the trade update is
// guarded by the version column, so concurrent registrations cannot lose
// updates.
type TradeService struct {
	logger *zap.Logger

	*orz.Service
	*repo.TradeRepo

	plannedExitRepo *repo.PlannedExitRepo
	actualExitRepo  *repo.ActualExitRepo

	table engine.CostTable
}

func NewTradeService(db *gorm.DB, table engine.CostTable, logger *zap.Logger) *TradeService {
	return &TradeService{
		logger:          logger,
		Service:         orz.NewService(db),
		TradeRepo:       repo.NewTradeRepo(db),
		plannedExitRepo: repo.NewPlannedExitRepo(db),
		actualExitRepo:  repo.NewActualExitRepo(db),
		table:           table,
	}
}

// PlannedExitInput is one leg of an exit plan as supplied by the caller.
type PlannedExitInput struct {
	Seq       int
	ExitType  string
	Price     float64
	Contracts int
	Notes     string
}

// CreateTradeInput carries everything a trade needs at creation. A set
// ExitPrice means the position was already flat when recorded (single
// full exit at that price).
type CreateTradeInput struct {
	Asset        string
	Direction    string
	EntryPrice   float64
	EntryTime    time.Time
	Contracts    int
	ExitPrice    *float64
	ExitTime     *time.Time
	StopPrice    *float64
	TargetPrice  *float64
	Mep          *float64
	Men          *float64
	Notes        string
	Tags         []string
	PlannedExits []PlannedExitInput
}

// UpdateTradeInput covers the attributes that stay editable after
// creation: the legacy plan, recorded excursions, notes and tags.
type UpdateTradeInput struct {
	StopPrice   *float64
	TargetPrice *float64
	Mep         *float64
	Men         *float64
	Notes       string
	Tags        []string
}

// CreateTrade persists a new trade with its plan legs. When the input
// carries an exit price the trade is closed through the regular exit
// registration path, so the status invariant holds even for trades
// recorded after the fact.
func (s *TradeService) CreateTrade(ctx context.Context, in CreateTradeInput) (*models.Trade, error) {
	trade := &models.Trade{
		ID:          ulid.Make().String(),
		Asset:       in.Asset,
		Direction:   in.Direction,
		EntryPrice:  in.EntryPrice,
		EntryTime:   in.EntryTime,
		Contracts:   in.Contracts,
		Costs:       s.table.TradeCosts(in.Asset, in.Contracts),
		Status:      models.StatusOpen,
		StopPrice:   in.StopPrice,
		TargetPrice: in.TargetPrice,
		Mep:         in.Mep,
		Men:         in.Men,
		Notes:       in.Notes,
		Tags:        in.Tags,
		Version:     1,
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.TradeRepo.Create(ctx, trade); err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}
		return s.insertPlanLegs(ctx, trade.ID, in.PlannedExits)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", trade.ID),
		zap.String("asset", trade.Asset),
		zap.String("direction", trade.Direction),
		zap.Int("contracts", trade.Contracts))

	if in.ExitPrice != nil {
		exitTime := in.EntryTime
		if in.ExitTime != nil {
			exitTime = *in.ExitTime
		}
		return s.RegisterExit(ctx, trade.ID, engine.ExitRequest{
			ExitType:  models.ExitTypeManual,
			Price:     *in.ExitPrice,
			Contracts: in.Contracts,
			ExitTime:  exitTime,
		})
	}

	return s.GetTrade(ctx, trade.ID)
}

// GetTrade loads one trade with its plan and exits.
func (s *TradeService) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	trade, err := s.TradeRepo.FindByIdWithExits(ctx, id)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// ListQuery selects and orders the trade collection for presentation.
type ListQuery struct {
	Asset         string
	Status        string
	PlanAdherence string
	SortBy        string
	Desc          bool
	Limit         int
}

// ListTrades loads trades and applies the adherence filter and sort
// projection in memory; the tolerance-band categories need the full trade
// state and cannot be pushed into SQL.
func (s *TradeService) ListTrades(ctx context.Context, q ListQuery) ([]models.Trade, error) {
	trades, err := s.TradeRepo.FindWithExits(ctx, repo.TradeQuery{
		Asset:  q.Asset,
		Status: q.Status,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}

	trades = engine.FilterByAdherence(trades, q.PlanAdherence)
	if q.SortBy != "" {
		engine.SortTrades(trades, q.SortBy, q.Desc)
	}
	return trades, nil
}

// UpdateTrade edits the mutable attributes of a trade. Entry attributes
// and reconciliation output are not editable; the write is limited to the
// mutable columns so an edit racing an exit registration cannot revert
// status, result or version.
func (s *TradeService) UpdateTrade(ctx context.Context, id string, in UpdateTradeInput) (*models.Trade, error) {
	if _, err := s.TradeRepo.FindById(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"stop_price":   in.StopPrice,
		"target_price": in.TargetPrice,
		"mep":          in.Mep,
		"men":          in.Men,
		"notes":        in.Notes,
		"tags":         datatypes.JSONSlice[string](in.Tags),
	}
	if err := s.TradeRepo.UpdateAttributes(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update trade %s: %w", id, err)
	}
	return s.GetTrade(ctx, id)
}

// ReplacePlan discards the trade's multi-leg plan and installs the given
// legs. Old legs are never merged with new ones.
func (s *TradeService) ReplacePlan(ctx context.Context, tradeID string, legs []PlannedExitInput) (*models.Trade, error) {
	if _, err := s.TradeRepo.FindById(ctx, tradeID); err != nil {
		return nil, err
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.plannedExitRepo.DeleteByTradeID(ctx, tradeID); err != nil {
			return fmt.Errorf("failed to discard plan for trade %s: %w", tradeID, err)
		}
		return s.insertPlanLegs(ctx, tradeID, legs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("exit plan replaced",
		zap.String("trade_id", tradeID),
		zap.Int("legs", len(legs)))

	return s.GetTrade(ctx, tradeID)
}

// RegisterExit reconciles one realized exit against the trade. The exit
// insert and the trade update commit together; the versioned update turns
// a concurrent registration into xe.ErrStaleTrade instead of a silent
// lost update.
func (s *TradeService) RegisterExit(ctx context.Context, tradeID string, req engine.ExitRequest) (*models.Trade, error) {
	trade, err := s.TradeRepo.FindByIdWithExits(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	rec, err := engine.RegisterExit(s.table, &trade, req)
	if err != nil {
		return nil, err
	}

	exit := rec.Exit
	exit.ID = ulid.Make().String()

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.actualExitRepo.Create(ctx, &exit); err != nil {
			return fmt.Errorf("failed to create exit for trade %s: %w", tradeID, err)
		}

		fields := map[string]interface{}{
			"status":  rec.Status,
			"result":  rec.TotalResult,
			"version": trade.Version + 1,
		}
		if rec.ExitPrice != nil {
			fields["exit_price"] = *rec.ExitPrice
			fields["exit_time"] = *rec.ExitTime
		}

		rows, err := s.TradeRepo.UpdateReconciled(ctx, trade.ID, trade.Version, fields)
		if err != nil {
			return fmt.Errorf("failed to update trade %s: %w", tradeID, err)
		}
		if rows == 0 {
			return xe.ErrStaleTrade
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("exit registered",
		zap.String("trade_id", trade.ID),
		zap.String("status", rec.Status),
		zap.Int("contracts", exit.Contracts),
		zap.Int("remaining", rec.Remaining),
		zap.Float64("leg_result", exit.Result),
		zap.Float64("total_result", rec.TotalResult))

	return s.GetTrade(ctx, tradeID)
}

// DeleteTrade removes a trade and cascades to its planned and actual
// exits in one transaction.
func (s *TradeService) DeleteTrade(ctx context.Context, id string) error {
	if _, err := s.TradeRepo.FindById(ctx, id); err != nil {
		return err
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.actualExitRepo.DeleteByTradeID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete exits for trade %s: %w", id, err)
		}
		if err := s.plannedExitRepo.DeleteByTradeID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete plan for trade %s: %w", id, err)
		}
		if err := s.TradeRepo.DeleteById(ctx, id); err != nil {
			return fmt.Errorf("failed to delete trade %s: %w", id, err)
		}
		return nil
	})
}

func (s *TradeService) insertPlanLegs(ctx context.Context, tradeID string, legs []PlannedExitInput) error {
	for _, in := range legs {
		leg := &models.PlannedExit{
			ID:        ulid.Make().String(),
			TradeID:   tradeID,
			Seq:       in.Seq,
			ExitType:  in.ExitType,
			Price:     in.Price,
			Contracts: in.Contracts,
			Notes:     in.Notes,
		}
		if err := s.plannedExitRepo.Create(ctx, leg); err != nil {
			return fmt.Errorf("failed to create planned exit for trade %s: %w", tradeID, err)
		}
	}
	return nil
}
