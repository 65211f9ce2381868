package projects

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type ProjectRepo interface {
	GetByName(dbc dbctx.Context, name string) (*types.Project, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Project, error)
	Create(dbc dbctx.Context, p *types.Project) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	VideoIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	ActiveVideoIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	SetVideos(dbc dbctx.Context, projectID uuid.UUID, videoIDs []uuid.UUID) error
	QuestionIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	ActiveQuestionIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	ListActive(dbc dbctx.Context) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) GetByName(dbc dbctx.Context, name string) (*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Project
	err := t.WithContext(dbc.Ctx).Where("name = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) Create(dbc dbctx.Context, p *types.Project) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(p).Error
}

func (r *projectRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *projectRepo) VideoIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var entries []*types.ProjectVideo
	if err := t.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.VideoID)
	}
	return out, nil
}

func (r *projectRepo) ActiveVideoIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Video{}).
		Joins("JOIN project_video pv ON pv.video_id = video.id").
		Where("pv.project_id = ? AND video.is_archived = ?", projectID, false).
		Pluck("video.id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) SetVideos(dbc dbctx.Context, projectID uuid.UUID, videoIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Delete(&types.ProjectVideo{}).Error; err != nil {
		return err
	}
	for _, vid := range videoIDs {
		entry := &types.ProjectVideo{
			ID:        uuid.New(),
			ProjectID: projectID,
			VideoID:   vid,
		}
		if err := t.WithContext(dbc.Ctx).Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *projectRepo) QuestionIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return r.questionIDs(dbc, projectID, false)
}

func (r *projectRepo) ActiveQuestionIDs(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return r.questionIDs(dbc, projectID, true)
}

func (r *projectRepo) questionIDs(dbc dbctx.Context, projectID uuid.UUID, activeOnly bool) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Distinct("question.id").
		Joins("JOIN question_group_entry qge ON qge.question_id = question.id").
		Joins("JOIN schema_group_entry sge ON sge.question_group_id = qge.question_group_id").
		Joins("JOIN project p ON p.schema_id = sge.schema_id").
		Where("p.id = ?", projectID)
	if activeOnly {
		q = q.Where("question.is_archived = ?", false)
	}
	var out []uuid.UUID
	if err := q.Pluck("question.id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListActive(dbc dbctx.Context) ([]*types.Project, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Project
	if err := t.WithContext(dbc.Ctx).
		Where("is_archived = ?", false).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
