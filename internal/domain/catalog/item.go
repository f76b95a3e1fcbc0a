package catalog

import "time"

type Item struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;not null;index:idx_item_title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Item) TableName() string { return "items" }

// ItemView is the read model returned by item lookups.
type ItemView struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
	Tags   []string `json:"tags"`
}
