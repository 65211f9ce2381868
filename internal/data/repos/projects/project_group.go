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

type ProjectGroupRepo interface {
	GetByName(dbc dbctx.Context, name string) (*types.ProjectGroup, error)
	Create(dbc dbctx.Context, g *types.ProjectGroup) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	MemberProjectIDs(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	AddProject(dbc dbctx.Context, groupID, projectID uuid.UUID) error
	RemoveProject(dbc dbctx.Context, groupID, projectID uuid.UUID) error
}

type projectGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectGroupRepo(db *gorm.DB, baseLog *logger.Logger) ProjectGroupRepo {
	return &projectGroupRepo{db: db, log: baseLog.With("repo", "ProjectGroupRepo")}
}

func (r *projectGroupRepo) GetByName(dbc dbctx.Context, name string) (*types.ProjectGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.ProjectGroup
	err := t.WithContext(dbc.Ctx).Where("name = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectGroupRepo) Create(dbc dbctx.Context, g *types.ProjectGroup) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(g).Error
}

func (r *projectGroupRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.ProjectGroup{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *projectGroupRepo) MemberProjectIDs(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var entries []*types.ProjectGroupEntry
	if err := t.WithContext(dbc.Ctx).
		Where("project_group_id = ?", groupID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ProjectID)
	}
	return out, nil
}

func (r *projectGroupRepo) AddProject(dbc dbctx.Context, groupID, projectID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	entry := &types.ProjectGroupEntry{
		ID:             uuid.New(),
		ProjectGroupID: groupID,
		ProjectID:      projectID,
	}
	return t.WithContext(dbc.Ctx).Create(entry).Error
}

func (r *projectGroupRepo) RemoveProject(dbc dbctx.Context, groupID, projectID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Where("project_group_id = ? AND project_id = ?", groupID, projectID).
		Delete(&types.ProjectGroupEntry{}).Error
}
