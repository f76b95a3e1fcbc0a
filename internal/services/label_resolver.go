package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/data/repos"
	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

// LabelResolver turns label names into rows, creating missing labels, and
// links them to an item. Safe to call repeatedly and from concurrent
// transactions.
type LabelResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, itemID int64, refs []types.LabelRef) ([]*types.Label, error)
}

type labelResolver struct {
	db            *gorm.DB
	log           *logger.Logger
	labelRepo     repos.LabelRepo
	itemLabelRepo repos.ItemLabelRepo
}

func NewLabelResolver(db *gorm.DB, log *logger.Logger, labelRepo repos.LabelRepo, itemLabelRepo repos.ItemLabelRepo) LabelResolver {
	return &labelResolver{
		db:            db,
		log:           log.With("service", "LabelResolver"),
		labelRepo:     labelRepo,
		itemLabelRepo: itemLabelRepo,
	}
}

// normalizeLabelRefs trims and case-folds names, rejects empty names and
// unknown kinds, and drops repeats keeping first occurrence order.
func normalizeLabelRefs(refs []types.LabelRef) ([]types.LabelRef, error) {
	folder := cases.Fold()
	out := make([]types.LabelRef, 0, len(refs))
	seen := make(map[types.LabelRef]struct{}, len(refs))
	for _, ref := range refs {
		if !ref.Kind.Valid() {
			return nil, apierr.Validation("unknown label kind %q", ref.Kind)
		}
		name := folder.String(strings.TrimSpace(ref.Name))
		if name == "" {
			return nil, apierr.Validation("%s name must not be empty", ref.Kind)
		}
		if len(name) > 255 {
			return nil, apierr.Validation("%s name must not exceed 255 characters", ref.Kind)
		}
		key := types.LabelRef{Name: name, Kind: ref.Kind}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out, nil
}

func (r *labelResolver) Resolve(ctx context.Context, tx *gorm.DB, itemID int64, refs []types.LabelRef) ([]*types.Label, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if itemID <= 0 {
		return nil, apierr.Validation("invalid item id")
	}
	norm, err := normalizeLabelRefs(refs)
	if err != nil {
		return nil, err
	}
	if len(norm) == 0 {
		return []*types.Label{}, nil
	}

	labels := make([]*types.Label, 0, len(norm))
	links := make([]*types.ItemLabel, 0, len(norm))
	for _, ref := range norm {
		label, err := r.findOrCreate(ctx, t, ref)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
		links = append(links, &types.ItemLabel{ItemID: itemID, LabelID: label.ID})
	}

	if _, err := r.itemLabelRepo.CreateIgnoreDuplicates(ctx, t, links); err != nil {
		return nil, fmt.Errorf("link labels to item %d: %w", itemID, err)
	}
	return labels, nil
}

func (r *labelResolver) findOrCreate(ctx context.Context, tx *gorm.DB, ref types.LabelRef) (*types.Label, error) {
	existing, err := r.labelRepo.GetByNameAndKind(ctx, tx, ref.Name, ref.Kind)
	if err != nil {
		return nil, fmt.Errorf("lookup label %q: %w", ref.Name, err)
	}
	if existing != nil {
		return existing, nil
	}
	return r.createOrReselect(ctx, tx, ref)
}

// createOrReselect inserts inside a savepoint so a lost race leaves the
// surrounding transaction usable, then reads back the winner's row.
func (r *labelResolver) createOrReselect(ctx context.Context, tx *gorm.DB, ref types.LabelRef) (*types.Label, error) {
	var created *types.Label
	err := tx.Transaction(func(sp *gorm.DB) error {
		l, err := r.labelRepo.Create(ctx, sp, &types.Label{Name: ref.Name, Kind: ref.Kind})
		if err != nil {
			return err
		}
		created = l
		return nil
	})
	if err == nil {
		return created, nil
	}
	if !dbpkg.IsUniqueViolation(err) {
		return nil, fmt.Errorf("create label %q: %w", ref.Name, err)
	}

	r.log.Debug("label created concurrently, reusing", "name", ref.Name, "kind", ref.Kind)
	again, err := r.labelRepo.GetByNameAndKind(ctx, tx, ref.Name, ref.Kind)
	if err != nil {
		return nil, fmt.Errorf("reselect label %q: %w", ref.Name, err)
	}
	if again == nil {
		return nil, fmt.Errorf("label %q conflicted but is not visible", ref.Name)
	}
	return again, nil
}
