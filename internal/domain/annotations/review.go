package annotations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// AnswerReview is the single review row attached to an AnnotatorAnswer.
type AnswerReview struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AnswerID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:answer_id" json:"answer_id"`
	Status     string         `gorm:"not null;default:'pending';column:status" json:"status"`
	ReviewerID uuid.UUID      `gorm:"type:uuid;not null;column:reviewer_id" json:"reviewer_id"`
	Comment    string         `gorm:"column:comment" json:"comment"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnswerReview) TableName() string { return "answer_review" }
