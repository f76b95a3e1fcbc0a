package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cinebridge-backend/internal/data/repos"
	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/events"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/platform/validation"
)

type UploadInput struct {
	Title  string   `json:"title" validate:"required,max=512"`
	Labels []string `json:"labels"`
	Tags   []string `json:"tags"`
}

// CatalogService runs every write in one transaction and returns errors
// already mapped to *apierr.Error. Subject-scoped calls read the subject
// from the request context.
type CatalogService interface {
	GetItem(ctx context.Context, itemID int64) ([]types.ItemView, error)
	Rate(ctx context.Context, itemID int64, rating float64) error
	Comment(ctx context.Context, itemID int64, text string) error
	DeleteComment(ctx context.Context, itemID int64) error
	Tag(ctx context.Context, itemID int64, name string, relevance float64) error
	Upload(ctx context.Context, in UploadInput) (int64, error)
	Delete(ctx context.Context, itemID int64) error
}

type catalogService struct {
	db              *gorm.DB
	log             *logger.Logger
	itemRepo        repos.ItemRepo
	labelRepo       repos.LabelRepo
	itemLabelRepo   repos.ItemLabelRepo
	interactionRepo repos.InteractionRepo
	resolver        LabelResolver
	engine          InteractionEngine
	publisher       events.Publisher
	validator       *validation.Validator
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	itemRepo repos.ItemRepo,
	labelRepo repos.LabelRepo,
	itemLabelRepo repos.ItemLabelRepo,
	interactionRepo repos.InteractionRepo,
	resolver LabelResolver,
	engine InteractionEngine,
	publisher events.Publisher,
	v *validation.Validator,
) CatalogService {
	if v == nil {
		v = validation.New()
	}
	return &catalogService{
		db:              db,
		log:             log.With("service", "CatalogService"),
		itemRepo:        itemRepo,
		labelRepo:       labelRepo,
		itemLabelRepo:   itemLabelRepo,
		interactionRepo: interactionRepo,
		resolver:        resolver,
		engine:          engine,
		publisher:       publisher,
		validator:       v,
	}
}

// inTx detaches the transaction from request cancellation: once begun it
// either commits or rolls back on its own terms.
func (s *catalogService) inTx(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	txCtx := context.WithoutCancel(ctx)
	return s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return fn(txCtx, tx)
	})
}

func (s *catalogService) mapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status < 500 {
		return ae
	}
	s.log.Error("catalog operation failed", "op", op, "error", err)
	return apierr.As(err)
}

func subjectFrom(ctx context.Context) (int64, error) {
	id := ctxutil.SubjectID(ctx)
	if id <= 0 {
		return 0, apierr.Unauthenticated()
	}
	return id, nil
}

func (s *catalogService) requireItem(ctx context.Context, tx *gorm.DB, itemID int64) error {
	ok, err := s.itemRepo.Exists(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("item")
	}
	return nil
}

func splitLabels(labels []*types.Label) (genres, tags []string) {
	genres, tags = []string{}, []string{}
	for _, l := range labels {
		switch l.Kind {
		case types.LabelGenre:
			genres = append(genres, l.Name)
		case types.LabelTag:
			tags = append(tags, l.Name)
		}
	}
	return genres, tags
}

func (s *catalogService) GetItem(ctx context.Context, itemID int64) ([]types.ItemView, error) {
	if itemID <= 0 {
		return []types.ItemView{}, nil
	}
	item, err := s.itemRepo.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, s.mapTxError("get_item", err)
	}
	if item == nil {
		return []types.ItemView{}, nil
	}
	labels, err := s.labelRepo.GetByItemID(ctx, nil, itemID)
	if err != nil {
		return nil, s.mapTxError("get_item", err)
	}
	genres, tags := splitLabels(labels)
	return []types.ItemView{{ID: item.ID, Title: item.Title, Genres: genres, Tags: tags}}, nil
}

func (s *catalogService) Rate(ctx context.Context, itemID int64, rating float64) error {
	subjectID, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	in := types.Interaction{SubjectID: subjectID, ItemID: itemID, Kind: types.InteractionRating, Value: rating}
	if err := s.engine.Validate(in); err != nil {
		return err
	}

	var genres, tags []string
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		if _, err := s.engine.Upsert(ctx, tx, in); err != nil {
			return err
		}
		labels, err := s.labelRepo.GetByItemID(ctx, tx, itemID)
		if err != nil {
			return err
		}
		genres, tags = splitLabels(labels)
		return nil
	})
	if err != nil {
		return s.mapTxError("rate", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(events.NewItemRated(events.ItemRated{
			SubjectID: subjectID,
			ItemID:    itemID,
			Genres:    genres,
			Tags:      tags,
			Rating:    int(rating),
		}))
	}
	return nil
}

func (s *catalogService) Comment(ctx context.Context, itemID int64, text string) error {
	subjectID, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	in := types.Interaction{SubjectID: subjectID, ItemID: itemID, Kind: types.InteractionComment, Text: text}
	if err := s.engine.Validate(in); err != nil {
		return err
	}
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		_, err := s.engine.Upsert(ctx, tx, in)
		return err
	})
	return s.mapTxError("comment", err)
}

func (s *catalogService) DeleteComment(ctx context.Context, itemID int64) error {
	subjectID, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	if itemID <= 0 {
		return apierr.Validation("invalid item id")
	}
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		return s.engine.Delete(ctx, tx, subjectID, itemID, types.InteractionComment)
	})
	return s.mapTxError("delete_comment", err)
}

// Tag resolves the tag label, links it to the item and records the
// subject's weighted tag for the item.
func (s *catalogService) Tag(ctx context.Context, itemID int64, name string, relevance float64) error {
	subjectID, err := subjectFrom(ctx)
	if err != nil {
		return err
	}
	refs, err := normalizeLabelRefs([]types.LabelRef{{Name: name, Kind: types.LabelTag}})
	if err != nil {
		return err
	}
	if err := s.validator.Validate(interactionKey{SubjectID: subjectID, ItemID: itemID}); err != nil {
		return err
	}
	if err := s.validator.Validate(relevanceValue{Relevance: relevance}); err != nil {
		return err
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		labels, err := s.resolver.Resolve(ctx, tx, itemID, refs)
		if err != nil {
			return err
		}
		labelID := labels[0].ID
		_, err = s.engine.Upsert(ctx, tx, types.Interaction{
			SubjectID: subjectID,
			ItemID:    itemID,
			Kind:      types.InteractionWeightedTag,
			Value:     relevance,
			LabelID:   &labelID,
		})
		return err
	})
	return s.mapTxError("tag", err)
}

func (s *catalogService) Upload(ctx context.Context, in UploadInput) (int64, error) {
	if err := s.validator.Validate(in); err != nil {
		return 0, err
	}
	refs := make([]types.LabelRef, 0, len(in.Labels)+len(in.Tags))
	for _, name := range in.Labels {
		refs = append(refs, types.LabelRef{Name: name, Kind: types.LabelGenre})
	}
	for _, name := range in.Tags {
		refs = append(refs, types.LabelRef{Name: name, Kind: types.LabelTag})
	}
	if _, err := normalizeLabelRefs(refs); err != nil {
		return 0, err
	}

	var itemID int64
	err := s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		item, err := s.itemRepo.Create(ctx, tx, &types.Item{Title: in.Title, CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		if _, err := s.resolver.Resolve(ctx, tx, item.ID, refs); err != nil {
			return err
		}
		itemID = item.ID
		return nil
	})
	if err != nil {
		return 0, s.mapTxError("upload", err)
	}
	s.log.Info("item uploaded", "item_id", itemID, "labels", len(refs))
	return itemID, nil
}

// Delete removes the item with its label links and interactions. Labels
// themselves are kept.
func (s *catalogService) Delete(ctx context.Context, itemID int64) error {
	if itemID <= 0 {
		return apierr.Validation("invalid item id")
	}
	err := s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.requireItem(ctx, tx, itemID); err != nil {
			return err
		}
		if _, err := s.interactionRepo.FullDeleteByItemID(ctx, tx, itemID); err != nil {
			return err
		}
		if _, err := s.itemLabelRepo.FullDeleteByItemID(ctx, tx, itemID); err != nil {
			return err
		}
		_, err := s.itemRepo.FullDeleteByID(ctx, tx, itemID)
		return err
	})
	return s.mapTxError("delete", err)
}
