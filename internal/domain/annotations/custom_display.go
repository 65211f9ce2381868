package annotations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomDisplay overrides how a question renders for one video in one project.
type CustomDisplay struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_display_tuple;column:project_id" json:"project_id"`
	VideoID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_display_tuple;column:video_id" json:"video_id"`
	QuestionID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_display_tuple;column:question_id" json:"question_id"`
	CustomText     string         `gorm:"column:custom_text" json:"custom_text"`
	CustomOptions  datatypes.JSON `gorm:"column:custom_options;type:jsonb" json:"custom_options"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CustomDisplay) TableName() string { return "custom_display" }
