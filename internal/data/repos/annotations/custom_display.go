package annotations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type CustomDisplayRepo interface {
	GetByTuple(dbc dbctx.Context, projectID, videoID, questionID uuid.UUID) (*types.CustomDisplay, error)
	Upsert(dbc dbctx.Context, row *types.CustomDisplay) error
}

type customDisplayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomDisplayRepo(db *gorm.DB, baseLog *logger.Logger) CustomDisplayRepo {
	return &customDisplayRepo{db: db, log: baseLog.With("repo", "CustomDisplayRepo")}
}

func (r *customDisplayRepo) GetByTuple(dbc dbctx.Context, projectID, videoID, questionID uuid.UUID) (*types.CustomDisplay, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.CustomDisplay
	err := t.WithContext(dbc.Ctx).
		Where("project_id = ? AND video_id = ? AND question_id = ?", projectID, videoID, questionID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customDisplayRepo) Upsert(dbc dbctx.Context, row *types.CustomDisplay) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "video_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"custom_text",
				"custom_options",
				"updated_at",
			}),
		}).
		Create(row).Error
}
