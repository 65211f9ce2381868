package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserTypeHuman = "human"
	UserTypeModel = "model"
	UserTypeAdmin = "admin"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserIDStr    string         `gorm:"uniqueIndex;not null;column:user_id_str" json:"user_id_str"`
	Email        *string        `gorm:"uniqueIndex;column:email" json:"email,omitempty"`
	PasswordHash string         `gorm:"column:password_hash" json:"-"`
	UserType     string         `gorm:"not null;default:'human';column:user_type" json:"user_type"`
	IsArchived   bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) IsGlobalAdmin() bool { return u != nil && u.UserType == UserTypeAdmin }
