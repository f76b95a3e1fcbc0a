package catalog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type LabelRepo interface {
	Create(ctx context.Context, tx *gorm.DB, label *types.Label) (*types.Label, error)
	GetByNameAndKind(ctx context.Context, tx *gorm.DB, name string, kind types.LabelKind) (*types.Label, error)
	GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.Label, error)
	CountByNameAndKind(ctx context.Context, tx *gorm.DB, name string, kind types.LabelKind) (int64, error)
}

type labelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLabelRepo(db *gorm.DB, baseLog *logger.Logger) LabelRepo {
	return &labelRepo{db: db, log: baseLog.With("repo", "LabelRepo")}
}

// Create inserts exactly one row and surfaces constraint violations as-is so
// callers can tell a lost race from a real failure.
func (r *labelRepo) Create(ctx context.Context, tx *gorm.DB, label *types.Label) (*types.Label, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if label.CreatedAt.IsZero() {
		label.CreatedAt = time.Now().UTC()
	}
	if err := t.WithContext(ctx).Create(label).Error; err != nil {
		return nil, err
	}
	return label, nil
}

// GetByNameAndKind expects an already folded name and returns nil, nil on miss.
func (r *labelRepo) GetByNameAndKind(ctx context.Context, tx *gorm.DB, name string, kind types.LabelKind) (*types.Label, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if name == "" {
		return nil, nil
	}
	var out types.Label
	err := t.WithContext(ctx).
		Where("lower(name) = lower(?) AND kind = ?", name, kind).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *labelRepo) GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.Label, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Label
	if itemID <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Joins("JOIN item_labels ON item_labels.label_id = labels.id").
		Where("item_labels.item_id = ?", itemID).
		Order("labels.kind ASC, labels.name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *labelRepo) CountByNameAndKind(ctx context.Context, tx *gorm.DB, name string, kind types.LabelKind) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(ctx).
		Model(&types.Label{}).
		Where("lower(name) = lower(?) AND kind = ?", name, kind).
		Count(&n).Error
	return n, err
}
