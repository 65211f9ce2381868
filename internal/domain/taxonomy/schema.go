package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Schema struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	InstructionsURL  string         `gorm:"column:instructions_url" json:"instructions_url"`
	HasCustomDisplay bool           `gorm:"not null;default:false;column:has_custom_display" json:"has_custom_display"`
	IsArchived       bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Schema) TableName() string { return "schema" }

// SchemaGroupEntry orders question groups inside a schema.
type SchemaGroupEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SchemaID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_schema_group;column:schema_id" json:"schema_id"`
	QuestionGroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_schema_group;column:question_group_id" json:"question_group_id"`
	Position        int       `gorm:"not null;column:position" json:"position"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (SchemaGroupEntry) TableName() string { return "schema_group_entry" }
