package models

import "time"

// PlannedExit is one leg of a trade's exit plan. Legs are replaced
// wholesale when a plan is edited, never merged.
type PlannedExit struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	TradeID   string    `gorm:"type:varchar(26);not null;index" json:"trade_id"`
	Seq       int       `gorm:"not null" json:"seq"` // position in the planned sequence
	ExitType  string    `gorm:"type:varchar(10);not null" json:"exit_type"`
	Price     float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	Contracts int       `gorm:"not null" json:"contracts"` // size allocated to this leg
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PlannedExit) TableName() string {
	return "planned_exits"
}
