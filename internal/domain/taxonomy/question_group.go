package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionGroup struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title                string         `gorm:"uniqueIndex;not null;column:title" json:"title"`
	Description          string         `gorm:"column:description" json:"description"`
	IsReusable           bool           `gorm:"not null;default:false;column:is_reusable" json:"is_reusable"`
	IsAutoSubmit         bool           `gorm:"not null;default:false;column:is_auto_submit" json:"is_auto_submit"`
	VerificationFunction string         `gorm:"column:verification_function" json:"verification_function"`
	IsArchived           bool           `gorm:"not null;default:false;column:is_archived" json:"is_archived"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuestionGroup) TableName() string { return "question_group" }

// QuestionGroupEntry orders questions inside a group.
type QuestionGroupEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionGroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_question;column:question_group_id" json:"question_group_id"`
	QuestionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_question;column:question_id" json:"question_id"`
	Position        int       `gorm:"not null;column:position" json:"position"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionGroupEntry) TableName() string { return "question_group_entry" }
