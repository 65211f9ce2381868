package videos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type VideoRepo interface {
	GetByUID(dbc dbctx.Context, uid string) (*types.Video, error)
	GetByUIDs(dbc dbctx.Context, uids []string) ([]*types.Video, error)
	Create(dbc dbctx.Context, v *types.Video) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListActiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Video, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) GetByUID(dbc dbctx.Context, uid string) (*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Video
	err := t.WithContext(dbc.Ctx).Where("video_uid = ?", uid).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *videoRepo) GetByUIDs(dbc dbctx.Context, uids []string) ([]*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Video
	if len(uids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("video_uid IN ?", uids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) Create(dbc dbctx.Context, v *types.Video) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(v).Error
}

func (r *videoRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Video{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *videoRepo) ListActiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Video
	if err := t.WithContext(dbc.Ctx).
		Joins("JOIN project_video pv ON pv.video_id = video.id").
		Where("pv.project_id = ? AND video.is_archived = ?", projectID, false).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
