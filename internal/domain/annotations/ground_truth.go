package annotations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewerGroundTruth is the project-shared canonical answer for a
// (video, question, project). Once ModifiedByAdminID is set the row is
// locked against plain reviewer submissions.
type ReviewerGroundTruth struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_gt_tuple;column:video_id" json:"video_id"`
	QuestionID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_gt_tuple;column:question_id" json:"question_id"`
	ProjectID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_gt_tuple;column:project_id" json:"project_id"`
	AnswerValue       string         `gorm:"not null;column:answer_value" json:"answer_value"`
	OriginalValue     string         `gorm:"not null;column:original_value" json:"original_value"`
	ReviewerID        uuid.UUID      `gorm:"type:uuid;not null;column:reviewer_id" json:"reviewer_id"`
	ModifiedByAdminID *uuid.UUID     `gorm:"type:uuid;column:modified_by_admin_id" json:"modified_by_admin_id,omitempty"`
	ModifiedByAdminAt *time.Time     `gorm:"column:modified_by_admin_at" json:"modified_by_admin_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReviewerGroundTruth) TableName() string { return "reviewer_ground_truth" }

func (g *ReviewerGroundTruth) AdminLocked() bool {
	return g != nil && g.ModifiedByAdminID != nil
}
