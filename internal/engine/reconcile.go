package engine

import (
	"errors"
	"time"

	"tradebook/internal/models"
)

// Exit registration precondition violations.
var (
	ErrTradeClosed              = errors.New("trade is already closed")
	ErrNonPositiveContracts     = errors.New("exit contracts must be positive")
	ErrContractsExceedRemaining = errors.New("exit contracts exceed the remaining position size")
)

// IsValidationError reports whether err is a RegisterExit precondition
// violation rather than a persistence failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrTradeClosed) ||
		errors.Is(err, ErrNonPositiveContracts) ||
		errors.Is(err, ErrContractsExceedRemaining)
}

// ExitRequest describes one exit to register against a trade.
type ExitRequest struct {
	ExitType      string
	Price         float64
	Contracts     int
	ExitTime      time.Time
	PlannedExitID *string // leg of the plan this exit fulfills, nil for discretionary exits
	Notes         string
}

// Reconciliation is the outcome of registering one exit: the new exit row
// and the trade fields the store must update alongside it.
type Reconciliation struct {
	Exit        models.ActualExit // new leg with result/points computed, ID unassigned
	Status      string
	TotalResult float64 // cumulative realized result including the new leg
	Remaining   int
	ExitPrice   *float64   // contracts-weighted average over all exits, set when closed
	ExitTime    *time.Time // set when closed
}

// RegisterExit validates and reconciles one exit against the trade's
// current state. It mutates nothing: the caller persists the returned exit
// row and trade fields together.
func RegisterExit(table CostTable, trade *models.Trade, req ExitRequest) (*Reconciliation, error) {
	if trade.Status == models.StatusClosed {
		return nil, ErrTradeClosed
	}
	if req.Contracts <= 0 {
		return nil, ErrNonPositiveContracts
	}
	if req.Contracts > trade.RemainingContracts() {
		return nil, ErrContractsExceedRemaining
	}

	outcome := table.ExitResult(trade.Asset, trade.Direction, req.Contracts, trade.EntryPrice, req.Price)

	rec := &Reconciliation{
		Exit: models.ActualExit{
			TradeID:       trade.ID,
			PlannedExitID: req.PlannedExitID,
			ExitType:      req.ExitType,
			Price:         req.Price,
			Contracts:     req.Contracts,
			ExitTime:      req.ExitTime,
			Result:        outcome.Result,
			Points:        outcome.Points,
			Notes:         req.Notes,
		},
	}

	exited := trade.ExitedContracts() + req.Contracts
	rec.Remaining = trade.Contracts - exited
	rec.TotalResult = outcome.Result
	for i := range trade.ActualExits {
		rec.TotalResult += trade.ActualExits[i].Result
	}

	rec.Status = models.StatusPartial
	if rec.Remaining <= 0 {
		rec.Status = models.StatusClosed

		weighted := req.Price * float64(req.Contracts)
		for i := range trade.ActualExits {
			e := &trade.ActualExits[i]
			weighted += e.Price * float64(e.Contracts)
		}
		avg := weighted / float64(exited)
		exitTime := req.ExitTime

		rec.ExitPrice = &avg
		rec.ExitTime = &exitTime
	}

	return rec, nil
}
