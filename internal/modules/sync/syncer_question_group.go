package sync

import (
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type QuestionGroupSyncer struct {
	docs []QuestionGroupDoc
	svc  services.QuestionGroupService
	repo taxonomy.QuestionGroupRepo
	log  *logger.Logger
}

func NewQuestionGroupSyncer(docs []QuestionGroupDoc, svc services.QuestionGroupService, repo taxonomy.QuestionGroupRepo, baseLog *logger.Logger) *QuestionGroupSyncer {
	return &QuestionGroupSyncer{docs: docs, svc: svc, repo: repo, log: baseLog.With("syncer", KindQuestionGroups)}
}

func (s *QuestionGroupSyncer) Kind() string { return KindQuestionGroups }

func questionInputs(docs []QuestionDoc) []services.QuestionInput {
	out := make([]services.QuestionInput, 0, len(docs))
	for _, d := range docs {
		out = append(out, services.QuestionInput{
			Text:          d.Text,
			QType:         d.QType,
			Options:       d.Options,
			DisplayValues: d.DisplayValues,
			DefaultOption: d.DefaultOption,
			OptionWeights: d.OptionWeights,
		})
	}
	return out
}

func (s *QuestionGroupSyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	keys := make([]string, 0, len(s.docs))
	for _, d := range s.docs {
		if d.Title == "" {
			failures = append(failures, shapeFailure(KindQuestionGroups, "", "title is required"))
			keys = append(keys, "")
			continue
		}
		if len(d.Questions) == 0 {
			failures = append(failures, shapeFailure(KindQuestionGroups, d.Title, "questions are required"))
		}
		for _, q := range d.Questions {
			if q.Text == "" {
				failures = append(failures, shapeFailure(KindQuestionGroups, d.Title, "question text is required"))
			}
			if q.QType == "" {
				failures = append(failures, shapeFailure(KindQuestionGroups, d.Title, "question qtype is required"))
			}
		}
		keys = append(keys, d.Title)
	}
	failures = append(failures, dupCheck(KindQuestionGroups, nonEmpty(keys))...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(s.docs))
	for i, d := range s.docs {
		current, err := s.repo.GetByTitle(dbc, keys[i])
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &questionGroupOp{
			key: keys[i],
			in: services.QuestionGroupInput{
				Title:                d.Title,
				Description:          d.Description,
				IsReusable:           d.IsReusable,
				IsAutoSubmit:         d.IsAutoSubmit,
				VerificationFunction: d.VerificationFunction,
				Questions:            questionInputs(d.Questions),
				Archived:             archived(d.IsActive),
			},
			current: current,
			svc:     s.svc,
			repo:    s.repo,
		})
	}
	return ops, nil, nil
}

type questionGroupOp struct {
	key     string
	in      services.QuestionGroupInput
	current *types.QuestionGroup
	svc     services.QuestionGroupService
	repo    taxonomy.QuestionGroupRepo
}

func (o *questionGroupOp) Key() string { return o.key }

func (o *questionGroupOp) Action() Action {
	if o.current == nil {
		return ActionAdd
	}
	return ActionUpdate
}

func (o *questionGroupOp) Verify(dbc dbctx.Context) error {
	if o.current == nil {
		return o.svc.ValidateNew(dbc, o.in)
	}
	return o.svc.ValidateUpdate(dbc, o.current, o.in)
}

func (o *questionGroupOp) Apply(dbc dbctx.Context) (Outcome, error) {
	current, err := o.repo.GetByTitle(dbc, o.key)
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
