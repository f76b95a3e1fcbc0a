package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/cinebridge-backend/internal/domain/catalog"
)

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Item {
	tb.Helper()
	item := &types.Item{Title: title, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return item
}

func SeedLabel(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, kind types.LabelKind) *types.Label {
	tb.Helper()
	label := &types.Label{Name: name, Kind: kind, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(label).Error; err != nil {
		tb.Fatalf("seed label: %v", err)
	}
	return label
}

func CountRows(tb testing.TB, tx *gorm.DB, model any, query string, args ...any) int64 {
	tb.Helper()
	var n int64
	q := tx.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count rows: %v", err)
	}
	return n
}
