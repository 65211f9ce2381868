package db

import (
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Catalog (videos + users)
		// =========================
		&types.Video{},
		&types.User{},

		// =========================
		// Question taxonomy
		// =========================
		&types.Question{},
		&types.QuestionGroup{},
		&types.QuestionGroupEntry{},
		&types.Schema{},
		&types.SchemaGroupEntry{},

		// =========================
		// Projects + membership
		// =========================
		&types.Project{},
		&types.ProjectVideo{},
		&types.ProjectGroup{},
		&types.ProjectGroupEntry{},
		&types.RoleAssignment{},

		// =========================
		// Annotations + ground truth
		// =========================
		&types.AnnotatorAnswer{},
		&types.ReviewerGroundTruth{},
		&types.AnswerReview{},
		&types.CustomDisplay{},

		// =========================
		// Sync bookkeeping
		// =========================
		&types.SyncJournal{},
	)
}
