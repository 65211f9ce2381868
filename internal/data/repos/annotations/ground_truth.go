package annotations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type GroundTruthRepo interface {
	GetByTuple(dbc dbctx.Context, videoID, questionID, projectID uuid.UUID) (*types.ReviewerGroundTruth, error)
	Create(dbc dbctx.Context, row *types.ReviewerGroundTruth) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	CountByProject(dbc dbctx.Context, projectID uuid.UUID, questionIDs, videoIDs []uuid.UUID) (int64, error)
}

type groundTruthRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroundTruthRepo(db *gorm.DB, baseLog *logger.Logger) GroundTruthRepo {
	return &groundTruthRepo{db: db, log: baseLog.With("repo", "GroundTruthRepo")}
}

func (r *groundTruthRepo) GetByTuple(dbc dbctx.Context, videoID, questionID, projectID uuid.UUID) (*types.ReviewerGroundTruth, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.ReviewerGroundTruth
	err := t.WithContext(dbc.Ctx).
		Where("video_id = ? AND question_id = ? AND project_id = ?", videoID, questionID, projectID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groundTruthRepo) Create(dbc dbctx.Context, row *types.ReviewerGroundTruth) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *groundTruthRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.ReviewerGroundTruth{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *groundTruthRepo) CountByProject(dbc dbctx.Context, projectID uuid.UUID, questionIDs, videoIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(questionIDs) == 0 || len(videoIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.ReviewerGroundTruth{}).
		Where("project_id = ? AND question_id IN ? AND video_id IN ?", projectID, questionIDs, videoIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
