package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Video struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoUID   string         `gorm:"uniqueIndex;not null;column:video_uid" json:"video_uid"`
	URL        string         `gorm:"not null;column:url" json:"url"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	IsArchived bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Video) TableName() string { return "video" }
