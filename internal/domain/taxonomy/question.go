package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeSingle      = "single"
	QuestionTypeDescription = "description"
)

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Text          string         `gorm:"uniqueIndex;not null;column:text" json:"text"`
	QType         string         `gorm:"not null;column:qtype" json:"qtype"`
	Options       datatypes.JSON `gorm:"column:options;type:jsonb" json:"options"`
	DisplayValues datatypes.JSON `gorm:"column:display_values;type:jsonb" json:"display_values"`
	DefaultOption *string        `gorm:"column:default_option" json:"default_option,omitempty"`
	OptionWeights datatypes.JSON `gorm:"column:option_weights;type:jsonb" json:"option_weights"`
	IsArchived    bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }
