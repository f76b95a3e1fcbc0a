package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cinebridge-backend/internal/data/repos/catalog"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type ItemRepo = catalog.ItemRepo
type LabelRepo = catalog.LabelRepo
type ItemLabelRepo = catalog.ItemLabelRepo
type InteractionRepo = catalog.InteractionRepo

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return catalog.NewItemRepo(db, baseLog)
}
func NewLabelRepo(db *gorm.DB, baseLog *logger.Logger) LabelRepo {
	return catalog.NewLabelRepo(db, baseLog)
}
func NewItemLabelRepo(db *gorm.DB, baseLog *logger.Logger) ItemLabelRepo {
	return catalog.NewItemLabelRepo(db, baseLog)
}
func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return catalog.NewInteractionRepo(db, baseLog)
}
