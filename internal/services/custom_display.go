package services

import (
	"fmt"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type CustomDisplayInput struct {
	ProjectName   string
	VideoUID      string
	QuestionText  string
	CustomText    string
	CustomOptions []string
}

type CustomDisplayService interface {
	Validate(dbc dbctx.Context, in CustomDisplayInput) error
	Ensure(dbc dbctx.Context, in CustomDisplayInput) (created bool, changed bool, err error)
}

type customDisplayService struct {
	displays  annrepos.CustomDisplayRepo
	projects  projectrepos.ProjectRepo
	schemas   taxonomy.SchemaRepo
	videos    videos.VideoRepo
	questions taxonomy.QuestionRepo
	log       *logger.Logger
}

func NewCustomDisplayService(
	displays annrepos.CustomDisplayRepo,
	projects projectrepos.ProjectRepo,
	schemas taxonomy.SchemaRepo,
	vids videos.VideoRepo,
	questions taxonomy.QuestionRepo,
	baseLog *logger.Logger,
) CustomDisplayService {
	return &customDisplayService{
		displays:  displays,
		projects:  projects,
		schemas:   schemas,
		videos:    vids,
		questions: questions,
		log:       baseLog.With("service", "CustomDisplayService"),
	}
}

type displayTuple struct {
	project  *types.Project
	video    *types.Video
	question *types.Question
}

func (s *customDisplayService) resolve(dbc dbctx.Context, in CustomDisplayInput) (*displayTuple, error) {
	p, err := s.projects.GetByName(dbc, in.ProjectName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("unknown project %q", in.ProjectName)
	}
	v, err := s.videos.GetByUID(dbc, in.VideoUID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("unknown video %q", in.VideoUID)
	}
	q, err := s.questions.GetByText(dbc, in.QuestionText)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("unknown question %q", in.QuestionText)
	}
	return &displayTuple{project: p, video: v, question: q}, nil
}

// Validate requires the project's schema to opt in to custom displays.
func (s *customDisplayService) Validate(dbc dbctx.Context, in CustomDisplayInput) error {
	if in.CustomText == "" && len(in.CustomOptions) == 0 {
		return fmt.Errorf("custom display for question %q carries no override", in.QuestionText)
	}
	tuple, err := s.resolve(dbc, in)
	if err != nil {
		return err
	}
	sch, err := s.schemaOf(dbc, tuple.project)
	if err != nil {
		return err
	}
	if !sch.HasCustomDisplay {
		return fmt.Errorf("schema %q of project %q does not allow custom displays", sch.Name, in.ProjectName)
	}
	return nil
}

func (s *customDisplayService) schemaOf(dbc dbctx.Context, p *types.Project) (*types.Schema, error) {
	sch, err := s.schemas.GetByID(dbc, p.SchemaID)
	if err != nil {
		return nil, err
	}
	if sch == nil {
		return nil, fmt.Errorf("project %q references missing schema", p.Name)
	}
	return sch, nil
}

func (s *customDisplayService) Ensure(dbc dbctx.Context, in CustomDisplayInput) (bool, bool, error) {
	tuple, err := s.resolve(dbc, in)
	if err != nil {
		return false, false, err
	}
	existing, err := s.displays.GetByTuple(dbc, tuple.project.ID, tuple.video.ID, tuple.question.ID)
	if err != nil {
		return false, false, err
	}
	if existing != nil &&
		existing.CustomText == in.CustomText &&
		jsonEqual(existing.CustomOptions, in.CustomOptions) {
		return false, false, nil
	}
	row := &types.CustomDisplay{
		ProjectID:  tuple.project.ID,
		VideoID:    tuple.video.ID,
		QuestionID: tuple.question.ID,
		CustomText: in.CustomText,
	}
	if len(in.CustomOptions) > 0 {
		row.CustomOptions = toJSON(in.CustomOptions)
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.displays.Upsert(dbc, row); err != nil {
		return false, false, err
	}
	return existing == nil, true, nil
}
