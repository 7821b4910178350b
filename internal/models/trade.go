package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Values stored in the direction, status and exit type columns.
const (
	DirectionLong  = "long"
	DirectionShort = "short"

	StatusOpen    = "open"
	StatusPartial = "partial"
	StatusClosed  = "closed"

	ExitTypeStop    = "stop"
	ExitTypeTarget  = "target"
	ExitTypePartial = "partial"
	ExitTypeManual  = "manual"
)

// Trade is a single day-trade position together with its exit plan and its
// realized exit legs. Entry attributes are fixed at creation; exit_price,
// exit_time, result and status are derived by the reconciliation engine as
// actual exits are registered.
type Trade struct {
	ID         string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	Asset      string    `gorm:"type:varchar(10);not null;index" json:"asset"`    // contract code, e.g. WIN/WDO
	Direction  string    `gorm:"type:varchar(10);not null" json:"direction"`      // long/short
	EntryPrice float64   `gorm:"type:decimal(20,8);not null" json:"entry_price"`
	EntryTime  time.Time `gorm:"not null;index" json:"entry_time"`
	Contracts  int       `gorm:"not null" json:"contracts"` // total size at entry

	ExitPrice *float64   `gorm:"type:decimal(20,8)" json:"exit_price"` // contracts-weighted average, set on close
	ExitTime  *time.Time `json:"exit_time"`                            // time of the exit that closed the position
	Result    *float64   `gorm:"type:decimal(20,8)" json:"result"`     // cumulative realized result across all exits
	Costs     float64    `gorm:"type:decimal(20,8)" json:"costs"`      // round-trip costs for the full size

	Mep *float64 `json:"mep"` // maximum favorable excursion in points, user recorded
	Men *float64 `json:"men"` // maximum adverse excursion in points, user recorded

	Status string `gorm:"type:varchar(10);not null;index" json:"status"` // open/partial/closed

	// Legacy single-leg plan. The multi-leg plan lives in PlannedExits;
	// both may be present on the same trade.
	StopPrice   *float64 `gorm:"type:decimal(20,8)" json:"stop_price"`
	TargetPrice *float64 `gorm:"type:decimal(20,8)" json:"target_price"`

	Notes string                      `gorm:"type:text" json:"notes"`
	Tags  datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`

	Version int64 `gorm:"not null;default:1" json:"version"` // optimistic lock, bumped on reconciliation

	PlannedExits []PlannedExit `gorm:"foreignKey:TradeID" json:"planned_exits"`
	ActualExits  []ActualExit  `gorm:"foreignKey:TradeID" json:"actual_exits"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}

// ExitedContracts sums the contracts of all registered actual exits.
func (t *Trade) ExitedContracts() int {
	total := 0
	for i := range t.ActualExits {
		total += t.ActualExits[i].Contracts
	}
	return total
}

// RemainingContracts is the size still open for exit registration.
func (t *Trade) RemainingContracts() int {
	return t.Contracts - t.ExitedContracts()
}

// HasPlan reports whether the trade carries any exit plan, legacy
// stop/target or multi-leg.
func (t *Trade) HasPlan() bool {
	return t.StopPrice != nil || t.TargetPrice != nil || len(t.PlannedExits) > 0
}
