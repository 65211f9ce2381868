package annotations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnnotatorAnswer is one annotator's answer to one question on one video in
// one project. Upserts are keyed by the full tuple.
type AnnotatorAnswer struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_tuple;column:video_id" json:"video_id"`
	QuestionID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_tuple;column:question_id" json:"question_id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_tuple;column:project_id" json:"project_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_tuple;column:user_id" json:"user_id"`
	AnswerValue string         `gorm:"not null;column:answer_value" json:"answer_value"`
	Confidence  *float64       `gorm:"column:confidence" json:"confidence,omitempty"`
	Notes       string         `gorm:"column:notes" json:"notes"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnnotatorAnswer) TableName() string { return "annotator_answer" }
