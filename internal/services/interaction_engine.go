package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/data/repos"
	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/platform/validation"
)

const MaxCommentLength = 4000

// InteractionEngine keeps one interaction row per (subject, item, kind).
type InteractionEngine interface {
	Validate(in types.Interaction) error
	Upsert(ctx context.Context, tx *gorm.DB, in types.Interaction) (*types.Interaction, error)
	Delete(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) error
}

type interactionEngine struct {
	db        *gorm.DB
	log       *logger.Logger
	repo      repos.InteractionRepo
	validator *validation.Validator
}

func NewInteractionEngine(db *gorm.DB, log *logger.Logger, repo repos.InteractionRepo, v *validation.Validator) InteractionEngine {
	if v == nil {
		v = validation.New()
	}
	return &interactionEngine{
		db:        db,
		log:       log.With("service", "InteractionEngine"),
		repo:      repo,
		validator: v,
	}
}

type interactionKey struct {
	SubjectID int64 `json:"subject_id" validate:"gt=0"`
	ItemID    int64 `json:"item_id" validate:"gt=0"`
}

type ratingValue struct {
	Rating float64 `json:"rating" validate:"gte=1,lte=10,integral"`
}

type commentValue struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type relevanceValue struct {
	Relevance float64 `json:"relevance" validate:"gte=0.1,lte=1"`
}

func (e *interactionEngine) Validate(in types.Interaction) error {
	if err := e.validator.Validate(interactionKey{SubjectID: in.SubjectID, ItemID: in.ItemID}); err != nil {
		return err
	}
	switch in.Kind {
	case types.InteractionRating:
		return e.validator.Validate(ratingValue{Rating: in.Value})
	case types.InteractionComment:
		return e.validator.Validate(commentValue{Text: strings.TrimSpace(in.Text)})
	case types.InteractionWeightedTag:
		if in.LabelID == nil || *in.LabelID <= 0 {
			return apierr.Validation("weighted tag requires a label")
		}
		return e.validator.Validate(relevanceValue{Relevance: in.Value})
	default:
		return apierr.Validation("unknown interaction kind %q", in.Kind)
	}
}

// normalize keeps only the fields meaningful for the kind.
func normalizeInteraction(in types.Interaction) types.Interaction {
	switch in.Kind {
	case types.InteractionRating:
		in.Text = ""
		in.LabelID = nil
	case types.InteractionComment:
		in.Text = strings.TrimSpace(in.Text)
		in.Value = 0
		in.LabelID = nil
	case types.InteractionWeightedTag:
		in.Text = ""
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}
	return in
}

func (e *interactionEngine) Upsert(ctx context.Context, tx *gorm.DB, in types.Interaction) (*types.Interaction, error) {
	t := tx
	if t == nil {
		t = e.db
	}
	if err := e.Validate(in); err != nil {
		return nil, err
	}
	in = normalizeInteraction(in)

	existing, err := e.repo.Get(ctx, t, in.SubjectID, in.ItemID, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("lookup interaction: %w", err)
	}
	if existing != nil {
		return e.update(ctx, t, in)
	}
	return e.insertOrUpdate(ctx, t, in)
}

// insertOrUpdate inserts inside a savepoint; losing a race to a concurrent
// first insert for the same key turns into an in-place update.
func (e *interactionEngine) insertOrUpdate(ctx context.Context, tx *gorm.DB, in types.Interaction) (*types.Interaction, error) {
	row := in
	err := tx.Transaction(func(sp *gorm.DB) error {
		return e.repo.Create(ctx, sp, &row)
	})
	if err == nil {
		return &row, nil
	}
	if !dbpkg.IsUniqueViolation(err) {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	e.log.Debug("interaction inserted concurrently, updating in place",
		"subject_id", in.SubjectID, "item_id", in.ItemID, "kind", in.Kind)
	return e.update(ctx, tx, in)
}

func (e *interactionEngine) update(ctx context.Context, tx *gorm.DB, in types.Interaction) (*types.Interaction, error) {
	n, err := e.repo.UpdateFields(ctx, tx, in.SubjectID, in.ItemID, in.Kind, map[string]interface{}{
		"value":       in.Value,
		"text":        in.Text,
		"label_id":    in.LabelID,
		"occurred_at": in.OccurredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("update interaction: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update interaction: row for subject %d item %d kind %s disappeared", in.SubjectID, in.ItemID, in.Kind)
	}
	out := in
	return &out, nil
}

func (e *interactionEngine) Delete(ctx context.Context, tx *gorm.DB, subjectID, itemID int64, kind types.InteractionKind) error {
	t := tx
	if t == nil {
		t = e.db
	}
	if !kind.Valid() {
		return apierr.Validation("unknown interaction kind %q", kind)
	}
	if err := e.validator.Validate(interactionKey{SubjectID: subjectID, ItemID: itemID}); err != nil {
		return err
	}
	n, err := e.repo.Delete(ctx, t, subjectID, itemID, kind)
	if err != nil {
		return fmt.Errorf("delete interaction: %w", err)
	}
	if n == 0 {
		e.log.Debug("delete of absent interaction", "subject_id", subjectID, "item_id", itemID, "kind", kind)
	}
	return nil
}
