package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectGroup struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProjectGroup) TableName() string { return "project_group" }

type ProjectGroupEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectGroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pgroup_project;column:project_group_id" json:"project_group_id"`
	ProjectID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pgroup_project;column:project_id" json:"project_id"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (ProjectGroupEntry) TableName() string { return "project_group_entry" }
