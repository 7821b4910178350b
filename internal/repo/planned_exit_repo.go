package repo

import (
	"context"

	"github.com/go-orz/orz"
	"gorm.io/gorm"

	"tradebook/internal/models"
)

func NewPlannedExitRepo(db *gorm.DB) *PlannedExitRepo {
	return &PlannedExitRepo{
		Repository: orz.NewRepository[models.PlannedExit, string](db),
	}
}

type PlannedExitRepo struct {
	orz.Repository[models.PlannedExit, string]
}

// FindByTradeID returns the trade's plan legs in planned order.
func (r PlannedExitRepo) FindByTradeID(ctx context.Context, tradeID string) ([]models.PlannedExit, error) {
	var legs []models.PlannedExit
	err := r.GetDB(ctx).
		Table(r.GetTableName()).
		Where("trade_id = ?", tradeID).
		Order("seq ASC").
		Find(&legs).Error
	return legs, err
}

// DeleteByTradeID discards all plan legs of a trade. Used together with
// fresh inserts to replace a plan wholesale.
func (r PlannedExitRepo) DeleteByTradeID(ctx context.Context, tradeID string) error {
	return r.GetDB(ctx).
		Where("trade_id = ?", tradeID).
		Delete(&models.PlannedExit{}).Error
}
