package catalog

import "time"

type LabelKind string

const (
	LabelGenre LabelKind = "genre"
	LabelTag   LabelKind = "tag"
)

func (k LabelKind) Valid() bool {
	switch k {
	case LabelGenre, LabelTag:
		return true
	default:
		return false
	}
}

// Label names are stored case-folded; (name, kind) is unique.
type Label struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;index:idx_label_name_kind,unique,priority:1" json:"name"`
	Kind      LabelKind `gorm:"column:kind;type:varchar(16);not null;index:idx_label_name_kind,unique,priority:2" json:"kind"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Label) TableName() string { return "labels" }

type ItemLabel struct {
	ItemID    int64     `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	LabelID   int64     `gorm:"primaryKey;autoIncrement:false;index:idx_item_label_label" json:"label_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ItemLabel) TableName() string { return "item_labels" }

// LabelRef names a label before it has been resolved to a row.
type LabelRef struct {
	Name string
	Kind LabelKind
}
