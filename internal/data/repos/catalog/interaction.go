package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type InteractionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Interaction) error
	Get(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) (*types.Interaction, error)
	GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.Interaction, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind, updates map[string]interface{}) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) (int64, error)
	FullDeleteByItemID(ctx context.Context, tx *gorm.DB, itemID int64) (int64, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (r *interactionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Interaction) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Create(row).Error
}

// Get returns nil, nil when no row exists for the key.
func (r *interactionRepo) Get(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) (*types.Interaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Interaction
	err := t.WithContext(ctx).
		Where("subject_id = ? AND item_id = ? AND kind = ?", subjectID, itemID, kind).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *interactionRepo) GetByItemID(ctx context.Context, tx *gorm.DB, itemID int64) ([]*types.Interaction, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Interaction
	if itemID <= 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("subject_id ASC, kind ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interactionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind, updates map[string]interface{}) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Model(&types.Interaction{}).
		Where("subject_id = ? AND item_id = ? AND kind = ?", subjectID, itemID, kind).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *interactionRepo) Delete(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Where("subject_id = ? AND item_id = ? AND kind = ?", subjectID, itemID, kind).
		Delete(&types.Interaction{})
	return res.RowsAffected, res.Error
}

func (r *interactionRepo) FullDeleteByItemID(ctx context.Context, tx *gorm.DB, itemID int64) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if itemID <= 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).Where("item_id = ?", itemID).Delete(&types.Interaction{})
	return res.RowsAffected, res.Error
}
