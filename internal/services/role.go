package services

import (
	"fmt"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/modules/sync/validate"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type RoleInput struct {
	UserIDStr   string
	ProjectName string
	Role        string
}

type RoleService interface {
	Validate(dbc dbctx.Context, in RoleInput) error
	Ensure(dbc dbctx.Context, in RoleInput) (created bool, changed bool, err error)
	Archive(dbc dbctx.Context, in RoleInput) (changed bool, err error)
	SyncAdminRoles(dbc dbctx.Context) (granted int, err error)
}

type roleService struct {
	roles    projectrepos.RoleRepo
	users    users.UserRepo
	projects projectrepos.ProjectRepo
	log      *logger.Logger
}

func NewRoleService(roles projectrepos.RoleRepo, usersRepo users.UserRepo, projects projectrepos.ProjectRepo, baseLog *logger.Logger) RoleService {
	return &roleService{
		roles:    roles,
		users:    usersRepo,
		projects: projects,
		log:      baseLog.With("service", "RoleService"),
	}
}

func validRole(role string) bool {
	switch role {
	case types.RoleAnnotator, types.RoleReviewer, types.RoleAdmin, types.RoleModel:
		return true
	default:
		return false
	}
}

func (s *roleService) Validate(dbc dbctx.Context, in RoleInput) error {
	if !validRole(in.Role) {
		return fmt.Errorf("unknown role %q", in.Role)
	}
	u, err := s.users.GetByIDStr(dbc, in.UserIDStr)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("role assignment references unknown user %q", in.UserIDStr)
	}
	p, err := s.projects.GetByName(dbc, in.ProjectName)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("role assignment references unknown project %q", in.ProjectName)
	}
	if err := validate.RoleLegal(in.Role, u.UserType); err != nil {
		return fmt.Errorf("user %q on project %q: %w", in.UserIDStr, in.ProjectName, err)
	}
	return nil
}

// Ensure makes (user, project, role) hold. An existing active assignment with
// the same role is left untouched; a different role archives the old row and
// creates the new one.
func (s *roleService) Ensure(dbc dbctx.Context, in RoleInput) (bool, bool, error) {
	u, err := s.users.GetByIDStr(dbc, in.UserIDStr)
	if err != nil {
		return false, false, err
	}
	if u == nil {
		return false, false, fmt.Errorf("role assignment references unknown user %q", in.UserIDStr)
	}
	p, err := s.projects.GetByName(dbc, in.ProjectName)
	if err != nil {
		return false, false, err
	}
	if p == nil {
		return false, false, fmt.Errorf("role assignment references unknown project %q", in.ProjectName)
	}
	existing, err := s.roles.ActiveRole(dbc, u.ID, p.ID)
	if err != nil {
		return false, false, err
	}
	if existing != nil && existing.Role == in.Role {
		return false, false, nil
	}
	if _, err := s.roles.Assign(dbc, u.ID, p.ID, in.Role); err != nil {
		return false, false, err
	}
	return existing == nil, true, nil
}

// Archive retires the user's active assignment on the project, if any.
func (s *roleService) Archive(dbc dbctx.Context, in RoleInput) (bool, error) {
	u, err := s.users.GetByIDStr(dbc, in.UserIDStr)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, fmt.Errorf("role assignment references unknown user %q", in.UserIDStr)
	}
	p, err := s.projects.GetByName(dbc, in.ProjectName)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, fmt.Errorf("role assignment references unknown project %q", in.ProjectName)
	}
	existing, err := s.roles.ActiveRole(dbc, u.ID, p.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	return true, s.roles.Archive(dbc, existing.ID)
}

// SyncAdminRoles materializes the implicit grant: every global admin holds
// the admin role on every non-archived project. Returns how many rows were
// created.
func (s *roleService) SyncAdminRoles(dbc dbctx.Context) (int, error) {
	admins, err := s.users.ListAdmins(dbc)
	if err != nil {
		return 0, err
	}
	if len(admins) == 0 {
		return 0, nil
	}
	projects, err := s.projects.ListActive(dbc)
	if err != nil {
		return 0, err
	}
	granted := 0
	for _, admin := range admins {
		for _, p := range projects {
			existing, err := s.roles.ActiveRole(dbc, admin.ID, p.ID)
			if err != nil {
				return granted, err
			}
			if existing != nil && existing.Role == types.RoleAdmin {
				continue
			}
			if _, err := s.roles.Assign(dbc, admin.ID, p.ID, types.RoleAdmin); err != nil {
				return granted, err
			}
			granted++
		}
	}
	return granted, nil
}
