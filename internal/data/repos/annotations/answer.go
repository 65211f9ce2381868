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

type AnswerRepo interface {
	GetByTuple(dbc dbctx.Context, videoID, questionID, projectID, userID uuid.UUID) (*types.AnnotatorAnswer, error)
	Upsert(dbc dbctx.Context, row *types.AnnotatorAnswer) error
	CountByProjectUser(dbc dbctx.Context, projectID, userID uuid.UUID, questionIDs, videoIDs []uuid.UUID) (int64, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) GetByTuple(dbc dbctx.Context, videoID, questionID, projectID, userID uuid.UUID) (*types.AnnotatorAnswer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.AnnotatorAnswer
	err := t.WithContext(dbc.Ctx).
		Where("video_id = ? AND question_id = ? AND project_id = ? AND user_id = ?",
			videoID, questionID, projectID, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *answerRepo) Upsert(dbc dbctx.Context, row *types.AnnotatorAnswer) error {
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
			Columns: []clause.Column{
				{Name: "video_id"}, {Name: "question_id"}, {Name: "project_id"}, {Name: "user_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer_value",
				"confidence",
				"notes",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *answerRepo) CountByProjectUser(dbc dbctx.Context, projectID, userID uuid.UUID, questionIDs, videoIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(questionIDs) == 0 || len(videoIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.AnnotatorAnswer{}).
		Where("project_id = ? AND user_id = ? AND question_id IN ? AND video_id IN ?",
			projectID, userID, questionIDs, videoIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
