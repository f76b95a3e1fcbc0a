package catalog

import "time"

type InteractionKind string

const (
	InteractionRating      InteractionKind = "rating"
	InteractionComment     InteractionKind = "comment"
	InteractionWeightedTag InteractionKind = "weighted_tag"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionRating, InteractionComment, InteractionWeightedTag:
		return true
	default:
		return false
	}
}

// Interaction holds at most one row per (subject, item, kind). Value carries
// the rating or the tag relevance, Text the comment body, LabelID the label a
// weighted tag refers to.
type Interaction struct {
	SubjectID  int64           `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	ItemID     int64           `gorm:"primaryKey;autoIncrement:false;index:idx_interaction_item" json:"item_id"`
	Kind       InteractionKind `gorm:"primaryKey;type:varchar(16)" json:"kind"`
	Value      float64         `gorm:"column:value;not null;default:0" json:"value"`
	Text       string          `gorm:"column:text;not null;default:''" json:"text,omitempty"`
	LabelID    *int64          `gorm:"column:label_id" json:"label_id,omitempty"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null" json:"occurred_at"`
}

func (Interaction) TableName() string { return "interactions" }
