package catalog

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type ItemLabelRepo interface {
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ItemLabel) (int, error)
	GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.ItemLabel, error)
	FullDeleteByItemID(ctx context.Context, tx *gorm.DB, itemID int64) (int64, error)
}

type itemLabelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemLabelRepo(db *gorm.DB, baseLog *logger.Logger) ItemLabelRepo {
	return &itemLabelRepo{db: db, log: baseLog.With("repo", "ItemLabelRepo")}
}

// CreateIgnoreDuplicates links labels to items, skipping pairs that already
// exist. It returns how many new links were written.
func (r *itemLabelRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ItemLabel) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "label_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *itemLabelRepo) GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.ItemLabel, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ItemLabel
	if itemID <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("label_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemLabelRepo) FullDeleteByItemID(ctx context.Context, tx *gorm.DB, itemID int64) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if itemID <= 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).Where("item_id = ?", itemID).Delete(&types.ItemLabel{})
	return res.RowsAffected, res.Error
}
