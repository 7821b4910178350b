package repo

import (
	"context"

	"github.com/go-orz/orz"
	"gorm.io/gorm"

	"tradebook/internal/models"
)

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{
		Repository: orz.NewRepository[models.Trade, string](db),
	}
}

type TradeRepo struct {
	orz.Repository[models.Trade, string]
}

// TradeQuery narrows FindWithExits. Zero values mean "no filter".
type TradeQuery struct {
	Asset  string
	Status string
	Limit  int
}

// FindWithExits loads trades newest-first with both exit collections
// preloaded.
func (r TradeRepo) FindWithExits(ctx context.Context, q TradeQuery) ([]models.Trade, error) {
	var trades []models.Trade
	db := r.GetDB(ctx).
		Preload("PlannedExits", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("ActualExits", func(db *gorm.DB) *gorm.DB { return db.Order("exit_time ASC") }).
		Order("entry_time DESC")
	if q.Asset != "" {
		db = db.Where("asset = ?", q.Asset)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	err := db.Find(&trades).Error
	return trades, err
}

// FindByIdWithExits loads one trade with both exit collections preloaded.
func (r TradeRepo) FindByIdWithExits(ctx context.Context, id string) (m models.Trade, err error) {
	err = r.GetDB(ctx).
		Preload("PlannedExits", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("ActualExits", func(db *gorm.DB) *gorm.DB { return db.Order("exit_time ASC") }).
		Where("id = ?", id).
		First(&m).Error
	return m, err
}

// FindWithResults loads trades that have realized results (partial or
// closed), exits preloaded, for the analytics pipeline.
func (r TradeRepo) FindWithResults(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.GetDB(ctx).
		Preload("PlannedExits").
		Preload("ActualExits").
		Where("result IS NOT NULL").
		Order("entry_time DESC").
		Find(&trades).Error
	return trades, err
}

// UpdateAttributes writes only the given mutable columns. Reconciliation
// output (status, result, exit_price, exit_time, version) must never
// appear in fields; a full-row write here could revert a concurrent
// reconciliation.
func (r TradeRepo) UpdateAttributes(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.GetDB(ctx).
		Table(r.GetTableName()).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateReconciled applies the reconciliation outcome guarded by the
// version column. A zero row count means the trade changed since it was
// read and the caller must retry against fresh state.
func (r TradeRepo) UpdateReconciled(ctx context.Context, id string, version int64, fields map[string]interface{}) (int64, error) {
	res := r.GetDB(ctx).
		Table(r.GetTableName()).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
	return res.RowsAffected, res.Error
}
