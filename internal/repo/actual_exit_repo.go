package repo

import (
	"context"

	"github.com/go-orz/orz"
	"gorm.io/gorm"

	"tradebook/internal/models"
)

func NewActualExitRepo(db *gorm.DB) *ActualExitRepo {
	return &ActualExitRepo{
		Repository: orz.NewRepository[models.ActualExit, string](db),
	}
}

type ActualExitRepo struct {
	orz.Repository[models.ActualExit, string]
}

// FindByTradeID returns the trade's realized exits in execution order.
func (r ActualExitRepo) FindByTradeID(ctx context.Context, tradeID string) ([]models.ActualExit, error) {
	var exits []models.ActualExit
	err := r.GetDB(ctx).
		Table(r.GetTableName()).
		Where("trade_id = ?", tradeID).
		Order("exit_time ASC").
		Find(&exits).Error
	return exits, err
}

// DeleteByTradeID removes all exits of a trade as part of the trade delete
// cascade.
func (r ActualExitRepo) DeleteByTradeID(ctx context.Context, tradeID string) error {
	return r.GetDB(ctx).
		Where("trade_id = ?", tradeID).
		Delete(&models.ActualExit{}).Error
}
