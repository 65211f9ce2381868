package sync

import (
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type ProjectSyncer struct {
	docs []ProjectDoc
	svc  services.ProjectService
	repo projectrepos.ProjectRepo
	log  *logger.Logger
}

func NewProjectSyncer(docs []ProjectDoc, svc services.ProjectService, repo projectrepos.ProjectRepo, baseLog *logger.Logger) *ProjectSyncer {
	return &ProjectSyncer{docs: docs, svc: svc, repo: repo, log: baseLog.With("syncer", KindProjects)}
}

func (s *ProjectSyncer) Kind() string { return KindProjects }

func (s *ProjectSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	keys := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		if d.ProjectName == "" {
			failures = append(failures, shapeFailure(KindProjects, "", "project_name is required"))
			keys = append(keys, "")
			continue
		}
		if d.SchemaName == "" {
			failures = append(failures, shapeFailure(KindProjects, d.ProjectName, "schema_name is required"))
		}
		keys = append(keys, d.ProjectName)
	}
	failures = append(failures, dupCheck(KindProjects, nonEmpty(keys))...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(s.docs))
	for i, d := range s.docs {
		current, err := s.repo.GetByName(dbc, keys[i])
		if err != nil {
			return nil, nil, err
		}
		uids := make([]string, 0, len(d.Videos))
		for _, v := range d.Videos {
			uids = append(uids, v.VideoUID)
		}
		ops = append(ops, &projectOp{
			key: keys[i],
			in: services.ProjectInput{
				Name:        d.ProjectName,
				SchemaName:  d.SchemaName,
				Description: d.Description,
				VideoUIDs:   uids,
				Archived:    archived(d.IsActive),
			},
			current: current,
			svc:     s.svc,
			repo:    s.repo,
		})
	}
	return ops, nil, nil
}

type projectOp struct {
	key     string
	in      services.ProjectInput
	current *types.Project
	svc     services.ProjectService
	repo    projectrepos.ProjectRepo
}

func (o *projectOp) Key() string { return o.key }

func (o *projectOp) Action() Action {
	if o.current == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *projectOp) Verify(dbc dbctx.Context) error {
	if o.current == nil {
		return o.svc.ValidateNew(dbc, o.in)
	}
	return o.svc.ValidateUpdate(dbc, o.current, o.in)
}

func (o *projectOp) Apply(dbc dbctx.Context) (Outcome, error) {
	current, err := o.repo.GetByName(dbc, o.key)
	if err != nil {
		return "", err
	}
	if current == nil {
		if _, err := o.svc.Create(dbc, o.in); err != nil {
			return "", err
		}
		return OutcomeCreated, nil
	}
	changed, err := o.svc.Update(dbc, current, o.in)
	if err != nil {
		return "", err
	}
	if !changed {
		return OutcomeSkipped, nil
	}
	return updateOutcome(current.IsArchived, o.in.Archived), nil
}
