package models

import "time"

// ActualExit is one realized partial or full exit. Rows are append-only;
// a correction means deleting the trade and re-importing it.
type ActualExit struct {
	ID            string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	TradeID       string    `gorm:"type:varchar(26);not null;index" json:"trade_id"`
	PlannedExitID *string   `gorm:"type:varchar(26);index" json:"planned_exit_id"` // nil means a discretionary exit
	ExitType      string    `gorm:"type:varchar(10);not null" json:"exit_type"`
	Price         float64   `gorm:"type:decimal(20,8);not null" json:"price"`
	Contracts     int       `gorm:"not null" json:"contracts"`
	ExitTime      time.Time `gorm:"not null;index" json:"exit_time"`
	Result        float64   `gorm:"type:decimal(20,8);not null" json:"result"` // realized result for this leg alone
	Points        float64   `gorm:"type:decimal(20,8);not null" json:"points"` // signed price delta in points
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ActualExit) TableName() string {
	return "actual_exits"
}
