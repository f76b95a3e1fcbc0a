package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cinebridge-backend/internal/data/repos"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type Repos struct {
	Item        repos.ItemRepo
	Label       repos.LabelRepo
	ItemLabel   repos.ItemLabelRepo
	Interaction repos.InteractionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Item:        repos.NewItemRepo(db, log),
		Label:       repos.NewLabelRepo(db, log),
		ItemLabel:   repos.NewItemLabelRepo(db, log),
		Interaction: repos.NewInteractionRepo(db, log),
	}
}
