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

type RoleRepo interface {
	ActiveRole(dbc dbctx.Context, userID, projectID uuid.UUID) (*types.RoleAssignment, error)
	ActiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.RoleAssignment, error)
	ActiveByProjectRole(dbc dbctx.Context, projectID uuid.UUID, role string) ([]*types.RoleAssignment, error)
	Assign(dbc dbctx.Context, userID, projectID uuid.UUID, role string) (*types.RoleAssignment, error)
	Archive(dbc dbctx.Context, id uuid.UUID) error
	SetCompletion(dbc dbctx.Context, id uuid.UUID, percent float64, completedAt *time.Time) error
}

type roleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleRepo(db *gorm.DB, baseLog *logger.Logger) RoleRepo {
	return &roleRepo{db: db, log: baseLog.With("repo", "RoleRepo")}
}

func (r *roleRepo) ActiveRole(dbc dbctx.Context, userID, projectID uuid.UUID) (*types.RoleAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.RoleAssignment
	err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND project_id = ? AND is_archived = ?", userID, projectID, false).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *roleRepo) ActiveByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.RoleAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoleAssignment
	if err := t.WithContext(dbc.Ctx).
		Where("project_id = ? AND is_archived = ?", projectID, false).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roleRepo) ActiveByProjectRole(dbc dbctx.Context, projectID uuid.UUID, role string) ([]*types.RoleAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RoleAssignment
	if err := t.WithContext(dbc.Ctx).
		Where("project_id = ? AND role = ? AND is_archived = ?", projectID, role, false).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Assign archives any existing active role for (user, project) and creates
// the new one. The two writes share the caller's transaction.
func (r *roleRepo) Assign(dbc dbctx.Context, userID, projectID uuid.UUID, role string) (*types.RoleAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.RoleAssignment{}).
		Where("user_id = ? AND project_id = ? AND is_archived = ?", userID, projectID, false).
		Updates(map[string]interface{}{"is_archived": true, "updated_at": time.Now().UTC()}).Error; err != nil {
		return nil, err
	}
	row := &types.RoleAssignment{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *roleRepo) Archive(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.RoleAssignment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_archived": true, "updated_at": time.Now().UTC()}).Error
}

func (r *roleRepo) SetCompletion(dbc dbctx.Context, id uuid.UUID, percent float64, completedAt *time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.RoleAssignment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completion_percent": percent,
			"completed_at":       completedAt,
			"updated_at":         time.Now().UTC(),
		}).Error
}
