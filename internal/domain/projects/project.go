package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	SchemaID    uuid.UUID      `gorm:"type:uuid;not null;index;column:schema_id" json:"schema_id"`
	Description string         `gorm:"column:description" json:"description"`
	IsArchived  bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

type ProjectVideo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_video;column:project_id" json:"project_id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_video;column:video_id" json:"video_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ProjectVideo) TableName() string { return "project_video" }
