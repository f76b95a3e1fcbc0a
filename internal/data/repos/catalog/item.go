package catalog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.Item) (*types.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Item, error)
	Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id int64) (int64, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{db: db, log: baseLog.With("repo", "ItemRepo")}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, item *types.Item) (*types.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if err := t.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID returns nil, nil when the item does not exist.
func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.Item, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var out types.Item
	err := t.WithContext(ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *itemRepo) Exists(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return false, nil
	}
	var n int64
	if err := t.WithContext(ctx).Model(&types.Item{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *itemRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id int64) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id <= 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.Item{})
	return res.RowsAffected, res.Error
}
