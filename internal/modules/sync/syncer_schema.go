package sync

import (
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type SchemaSyncer struct {
	docs []SchemaDoc
	svc  services.SchemaService
	repo taxonomy.SchemaRepo
	log  *logger.Logger
}

func NewSchemaSyncer(docs []SchemaDoc, svc services.SchemaService, repo taxonomy.SchemaRepo, baseLog *logger.Logger) *SchemaSyncer {
	return &SchemaSyncer{docs: docs, svc: svc, repo: repo, log: baseLog.With("syncer", KindSchemas)}
}

func (s *SchemaSyncer) Kind() string { return KindSchemas }

func (s *SchemaSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	keys := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		if d.SchemaName == "" {
			failures = append(failures, shapeFailure(KindSchemas, "", "schema_name is required"))
			keys = append(keys, "")
			continue
		}
		if len(d.QuestionGroupNames) == 0 {
			failures = append(failures, shapeFailure(KindSchemas, d.SchemaName, "question_group_names are required"))
		}
		keys = append(keys, d.SchemaName)
	}
	failures = append(failures, dupCheck(KindSchemas, nonEmpty(keys))...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(s.docs))
	for i, d := range s.docs {
		current, err := s.repo.GetByName(dbc, keys[i])
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &schemaOp{
			key: keys[i],
			in: services.SchemaInput{
				Name:             d.SchemaName,
				InstructionsURL:  d.InstructionsURL,
				HasCustomDisplay: d.HasCustomDisplay,
				GroupTitles:      d.QuestionGroupNames,
				Archived:         archived(d.IsActive),
			},
			current: current,
			svc:     s.svc,
			repo:    s.repo,
		})
	}
	return ops, nil, nil
}

type schemaOp struct {
	key     string
	in      services.SchemaInput
	current *types.Schema
	svc     services.SchemaService
	repo    taxonomy.SchemaRepo
}

func (o *schemaOp) Key() string { return o.key }

func (o *schemaOp) Action() Action {
	if o.current == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *schemaOp) Verify(dbc dbctx.Context) error {
	if o.current == nil {
		return o.svc.ValidateNew(dbc, o.in)
	}
	return o.svc.ValidateUpdate(dbc, o.current, o.in)
}

func (o *schemaOp) Apply(dbc dbctx.Context) (Outcome, error) {
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
