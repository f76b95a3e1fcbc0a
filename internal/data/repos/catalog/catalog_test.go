package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
)

func TestItemRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewItemRepo(db, testutil.Logger(t))

	item, err := repo.Create(ctx, tx, &types.Item{Title: "The Matrix"})
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	got, err := repo.GetByID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.Equal(t, "The Matrix", got.Title)

	missing, err := repo.GetByID(ctx, tx, item.ID+100)
	require.NoError(t, err)
	require.Nil(t, missing)

	ok, err := repo.Exists(ctx, tx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := repo.FullDeleteByID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	ok, err = repo.Exists(ctx, tx, item.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLabelRepoUniqueness(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewLabelRepo(db, testutil.Logger(t))

	_, err := repo.Create(ctx, tx, &types.Label{Name: "action", Kind: types.LabelGenre})
	require.NoError(t, err)

	// Same name under another kind is a different label.
	_, err = repo.Create(ctx, tx, &types.Label{Name: "action", Kind: types.LabelTag})
	require.NoError(t, err)

	// Savepoint so the failed insert does not poison the outer transaction.
	err = tx.SavePoint("dup").Error
	require.NoError(t, err)
	_, err = repo.Create(ctx, tx, &types.Label{Name: "Action", Kind: types.LabelGenre})
	require.Error(t, err)
	require.True(t, dbpkg.IsUniqueViolation(err), "got %v", err)
	require.NoError(t, tx.RollbackTo("dup").Error)

	got, err := repo.GetByNameAndKind(ctx, tx, "ACTION", types.LabelGenre)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "action", got.Name)

	n, err := repo.CountByNameAndKind(ctx, tx, "action", types.LabelGenre)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestItemLabelRepoIgnoresDuplicates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)
	links := NewItemLabelRepo(db, logg)
	labels := NewLabelRepo(db, logg)

	item := testutil.SeedItem(t, ctx, tx, "Inception")
	drama := testutil.SeedLabel(t, ctx, tx, "drama", types.LabelGenre)
	heist := testutil.SeedLabel(t, ctx, tx, "heist", types.LabelTag)

	n, err := links.CreateIgnoreDuplicates(ctx, tx, []*types.ItemLabel{
		{ItemID: item.ID, LabelID: drama.ID},
		{ItemID: item.ID, LabelID: heist.ID},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = links.CreateIgnoreDuplicates(ctx, tx, []*types.ItemLabel{{ItemID: item.ID, LabelID: drama.ID}})
	require.NoError(t, err)
	require.Equal(t, 0, n)

	rows, err := links.GetByItemID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byItem, err := labels.GetByItemID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.Len(t, byItem, 2)
	require.Equal(t, types.LabelGenre, byItem[0].Kind)

	deleted, err := links.FullDeleteByItemID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
}

func TestInteractionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewInteractionRepo(db, testutil.Logger(t))

	item := testutil.SeedItem(t, ctx, tx, "The Godfather")
	now := time.Now().UTC()
	row := &types.Interaction{SubjectID: 1, ItemID: item.ID, Kind: types.InteractionRating, Value: 5, OccurredAt: now}
	require.NoError(t, repo.Create(ctx, tx, row))

	require.NoError(t, tx.SavePoint("dup").Error)
	err := repo.Create(ctx, tx, &types.Interaction{SubjectID: 1, ItemID: item.ID, Kind: types.InteractionRating, Value: 6, OccurredAt: now})
	require.True(t, dbpkg.IsUniqueViolation(err), "got %v", err)
	require.NoError(t, tx.RollbackTo("dup").Error)

	n, err := repo.UpdateFields(ctx, tx, 1, item.ID, types.InteractionRating, map[string]interface{}{"value": 8.0})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := repo.Get(ctx, tx, 1, item.ID, types.InteractionRating)
	require.NoError(t, err)
	require.Equal(t, 8.0, got.Value)

	none, err := repo.Get(ctx, tx, 1, item.ID, types.InteractionComment)
	require.NoError(t, err)
	require.Nil(t, none)

	n, err = repo.Delete(ctx, tx, 1, item.ID, types.InteractionComment)
	require.NoError(t, err)
	require.Zero(t, n)

	rows, err := repo.GetByItemID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, err = repo.FullDeleteByItemID(ctx, tx, item.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
