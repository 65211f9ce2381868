package sync

import (
	"fmt"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
	"github.com/yungbote/videolabel-backend/internal/services"
)

type CustomDisplaySyncer struct {
	docs      []CustomDisplayDoc
	svc       services.CustomDisplayService
	displays  annrepos.CustomDisplayRepo
	projects  projectrepos.ProjectRepo
	videos    videos.VideoRepo
	questions taxonomy.QuestionRepo
	log       *logger.Logger
}

func NewCustomDisplaySyncer(
	docs []CustomDisplayDoc,
	svc services.CustomDisplayService,
	displays annrepos.CustomDisplayRepo,
	projects projectrepos.ProjectRepo,
	vids videos.VideoRepo,
	questions taxonomy.QuestionRepo,
	baseLog *logger.Logger,
) *CustomDisplaySyncer {
	return &CustomDisplaySyncer{
		docs:      docs,
		svc:       svc,
		displays:  displays,
		projects:  projects,
		videos:    vids,
		questions: questions,
		log:       baseLog.With("syncer", KindCustomDisplays),
	}
}

func (s *CustomDisplaySyncer) Kind() string { return KindCustomDisplays }

func displayKey(d CustomDisplayDoc) string {
	return fmt.Sprintf("%s/%s/%s", d.ProjectName, d.VideoUID, d.QuestionText)
}

func (s *CustomDisplaySyncer) Plan(dbc dbctx.Context) ([]Operation, []Failure, error) {
	var failures []Failure
	type planned struct {
		doc CustomDisplayDoc
		key string
	}
	var candidates []planned
	keys := make([]string, 0, len(s.docs))

	for _, d := range s.docs {
		key := displayKey(d)
		if d.ProjectName == "" || d.VideoUID == "" || d.QuestionText == "" {
			failures = append(failures, shapeFailure(KindCustomDisplays, key, "project_name, video_uid and question_text are required"))
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
		v, err := s.videos.GetByUID(dbc, d.VideoUID)
		if err != nil {
			return nil, nil, err
		}
		if v == nil {
			failures = append(failures, notFoundFailure(KindVideos, d.VideoUID))
			continue
		}
		q, err := s.questions.GetByText(dbc, d.QuestionText)
		if err != nil {
			return nil, nil, err
		}
		if q == nil {
			failures = append(failures, notFoundFailure("questions", d.QuestionText))
			continue
		}
		keys = append(keys, key)
		candidates = append(candidates, planned{doc: d, key: key})
	}
	failures = append(failures, dupCheck(KindCustomDisplays, keys)...)
	if len(failures) > 0 {
		return nil, failures, nil
	}

	ops := make([]Operation, 0, len(candidates))
	for _, c := range candidates {
		existing, err := s.currentRow(dbc, c.doc)
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, &customDisplayOp{
			key: c.key,
			in: services.CustomDisplayInput{
				ProjectName:   c.doc.ProjectName,
				VideoUID:      c.doc.VideoUID,
				QuestionText:  c.doc.QuestionText,
				CustomText:    c.doc.CustomText,
				CustomOptions: c.doc.CustomOptions,
			},
			existing: existing != nil,
			svc:      s.svc,
		})
	}
	return ops, nil, nil
}

func (s *CustomDisplaySyncer) currentRow(dbc dbctx.Context, d CustomDisplayDoc) (*types.CustomDisplay, error) {
	p, err := s.projects.GetByName(dbc, d.ProjectName)
	if err != nil {
		return nil, err
	}
	v, err := s.videos.GetByUID(dbc, d.VideoUID)
	if err != nil {
		return nil, err
	}
	q, err := s.questions.GetByText(dbc, d.QuestionText)
	if err != nil {
		return nil, err
	}
	return s.displays.GetByTuple(dbc, p.ID, v.ID, q.ID)
}

type customDisplayOp struct {
	key      string
	in       services.CustomDisplayInput
	existing bool
	svc      services.CustomDisplayService
}

func (o *customDisplayOp) Key() string { return o.key }

func (o *customDisplayOp) Action() Action {
	if o.existing {
		return ActionUpdate
	}
	return ActionAdd
}

func (o *customDisplayOp) Verify(dbc dbctx.Context) error {
	return o.svc.Validate(dbc, o.in)
}

func (o *customDisplayOp) Apply(dbc dbctx.Context) (Outcome, error) {
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
