package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAnnotator = "annotator"
	RoleReviewer  = "reviewer"
	RoleAdmin     = "admin"
	RoleModel     = "model"
)

// RoleImplies reports whether holding `role` grants the capabilities of `other`.
// Reviewer implies annotator; admin implies annotator and reviewer.
func RoleImplies(role, other string) bool {
	if role == other {
		return true
	}
	switch role {
	case RoleAdmin:
		return other == RoleAnnotator || other == RoleReviewer
	case RoleReviewer:
		return other == RoleAnnotator
	default:
		return false
	}
}

// RoleAssignment is the (user, project) role row. At most one non-archived
// row exists per (user, project); reassignment archives the old row.
type RoleAssignment struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_role_user_project;column:user_id" json:"user_id"`
	ProjectID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_role_user_project;column:project_id" json:"project_id"`
	Role              string         `gorm:"not null;column:role" json:"role"`
	IsArchived        bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CompletionPercent float64        `gorm:"not null;default:0;column:completion_percent" json:"completion_percent"`
	CompletedAt       *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RoleAssignment) TableName() string { return "role_assignment" }
