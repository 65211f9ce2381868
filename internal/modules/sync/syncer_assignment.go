package sync

import (
	"fmt"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

// AssignmentSyncer reconciles role assignments. Users and projects are
// update-only references here: a doc naming an unknown user or project is a
// NotFoundError collected across the whole batch.
type AssignmentSyncer struct {
	docs     []AssignmentDoc
	svc      services.RoleService
	users    users.UserRepo
	projects projectrepos.ProjectRepo
	roles    projectrepos.RoleRepo
	log      *logger.Logger
}

func NewAssignmentSyncer(
	docs []AssignmentDoc,
	svc services.RoleService,
	usersRepo users.UserRepo,
	projects projectrepos.ProjectRepo,
	roles projectrepos.RoleRepo,
	baseLog *logger.Logger,
) *AssignmentSyncer {
	return &AssignmentSyncer{
		docs:     docs,
		svc:      svc,
		users:    usersRepo,
		projects: projects,
		roles:    roles,
		log:      baseLog.With("syncer", KindAssignments),
	}
}

func (s *AssignmentSyncer) Kind() string { return KindAssignments }

// resolveUser maps user_name or user_email onto the stored user row.
func (s *AssignmentSyncer) resolveUser(dbc dbctx.Context, d AssignmentDoc) (*types.User, string, error) {
	if d.UserName != "" {
		u, err := s.users.GetByIDStr(dbc, d.UserName)
		return u, d.UserName, err
	}
	u, err := s.users.GetByEmail(dbc, d.UserEmail)
	return u, d.UserEmail, err
}

func (s *AssignmentSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	type planned struct {
		doc  AssignmentDoc
		user *types.User
		key  string
	}
	var candidates []planned
	keys := make([]string, 0, len(s.docs))

	for _, d := range s.docs {
		if d.UserName == "" && d.UserEmail == "" {
			failures = append(failures, shapeFailure(KindAssignments, d.ProjectName, "user_name or user_email is required"))
			continue
		}
		if d.ProjectName == "" {
			failures = append(failures, shapeFailure(KindAssignments, d.UserName+d.UserEmail, "project_name is required"))
			continue
		}
		if d.Role == "" {
			failures = append(failures, shapeFailure(KindAssignments, d.UserName+d.UserEmail, "role is required"))
			continue
		}
		u, ref, err := s.resolveUser(dbc, d)
		if err != nil {
			return nil, nil, err
		}
		if u == nil {
			failures = append(failures, notFoundFailure(KindUsers, ref))
			continue
		}
		p, err := s.projects.GetByName(dbc, d.ProjectName)
		if err != nil {
			return nil, nil, err
		}
		if p == nil {
			failures = append(failures, notFoundFailure(KindProjects, d.ProjectName))
			continue
		}
		key := fmt.Sprintf("%s@%s", u.UserIDStr, d.ProjectName)
		keys = append(keys, key)
		candidates = append(candidates, planned{doc: d, user: u, key: key})
	}
	failures = append(failures, dupCheck(KindAssignments, keys)...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(candidates))
	for _, c := range candidates {
		p, err := s.projects.GetByName(dbc, c.doc.ProjectName)
		if err != nil {
			return nil, nil, err
		}
		existing, err := s.roles.ActiveRole(dbc, c.user.ID, p.ID)
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &assignmentOp{
			key: c.key,
			in: services.RoleInput{
				UserIDStr:   c.user.UserIDStr,
				ProjectName: c.doc.ProjectName,
				Role:        c.doc.Role,
			},
			deactivate: archived(c.doc.IsActive),
			existing:   existing,
			svc:        s.svc,
		})
	}
	return ops, nil, nil
}

type assignmentOp struct {
	key        string
	in         services.RoleInput
	deactivate bool
	existing   *types.RoleAssignment
	svc        services.RoleService
}

func (o *assignmentOp) Key() string { return o.key }

func (o *assignmentOp) Action() Action {
	if o.existing == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *assignmentOp) Verify(dbc dbctx.Context) error {
	if o.deactivate {
		return nil
	}
	return o.svc.Validate(dbc, o.in)
}

func (o *assignmentOp) Apply(dbc dbctx.Context) (Outcome, error) {
	if o.deactivate {
		changed, err := o.svc.Archive(dbc, o.in)
		if err != nil {
			return "", err
		}
		if !changed {
			return OutcomeSkipped, nil
		}
		return OutcomeRemoved, nil
	}
	created, changed, err := o.svc.Ensure(dbc, o.in)
	if err != nil {
		return "", err
	}
	switch {
	case created:
		return OutcomeCreated, nil
	case changed:
		return OutcomeUpdated, nil
	default:
		return OutcomeSkipped, nil
	}
}
