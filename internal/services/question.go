package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/modules/sync/validate"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type QuestionInput struct {
	Text          string
	QType         string
	Options       []string
	DisplayValues []string
	DefaultOption string
	OptionWeights map[string]float64
	Archived      bool
}

type QuestionService interface {
	ValidateNew(in QuestionInput) error
	ValidateUpdate(current *types.Question, in QuestionInput) error
	Create(dbc dbctx.Context, in QuestionInput) (*types.Question, error)
	Diff(current *types.Question, in QuestionInput) map[string]interface{}
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type questionService struct {
	repo taxonomy.QuestionRepo
	log  *logger.Logger
}

func NewQuestionService(repo taxonomy.QuestionRepo, baseLog *logger.Logger) QuestionService {
	return &questionService{repo: repo, log: baseLog.With("service", "QuestionService")}
}

func (s *questionService) ValidateNew(in QuestionInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	switch in.QType {
	case types.QuestionTypeSingle:
		if len(in.Options) == 0 {
			return fmt.Errorf("question %q: single-select questions need at least one option", in.Text)
		}
	case types.QuestionTypeDescription:
		if len(in.Options) > 0 {
			return fmt.Errorf("question %q: description questions carry no options", in.Text)
		}
	default:
		return fmt.Errorf("question %q: unknown question type %q", in.Text, in.QType)
	}
	if err := validate.NoDuplicates("option", in.Options); err != nil {
		return fmt.Errorf("question %q: %w", in.Text, err)
	}
	if err := validate.DefaultInOptions(in.DefaultOption, in.Options); err != nil {
		return fmt.Errorf("question %q: %w", in.Text, err)
	}
	if err := validate.DisplayValuesParallel(in.Options, in.DisplayValues); err != nil {
		return fmt.Errorf("question %q: %w", in.Text, err)
	}
	return nil
}

// ValidateUpdate enforces the append-only option rule on top of the shape
// checks. The question type is immutable once created.
func (s *questionService) ValidateUpdate(current *types.Question, in QuestionInput) error {
	if in.QType != "" && in.QType != current.QType {
		return fmt.Errorf("question %q: type cannot change from %q to %q", current.Text, current.QType, in.QType)
	}
	if len(in.Options) > 0 {
		if err := validate.NoDuplicates("option", in.Options); err != nil {
			return fmt.Errorf("question %q: %w", current.Text, err)
		}
		if err := validate.AppendOnlyOptions(stringsFromJSON(current.Options), in.Options); err != nil {
			return fmt.Errorf("question %q: %w", current.Text, err)
		}
		if err := validate.DisplayValuesParallel(in.Options, in.DisplayValues); err != nil {
			return fmt.Errorf("question %q: %w", current.Text, err)
		}
	}
	def := in.DefaultOption
	if def == "" && current.DefaultOption != nil {
		def = *current.DefaultOption
	}
	opts := in.Options
	if len(opts) == 0 {
		opts = stringsFromJSON(current.Options)
	}
	if err := validate.DefaultInOptions(def, opts); err != nil {
		return fmt.Errorf("question %q: %w", current.Text, err)
	}
	return nil
}

func (s *questionService) Create(dbc dbctx.Context, in QuestionInput) (*types.Question, error) {
	if err := s.ValidateNew(in); err != nil {
		return nil, err
	}
	q := &types.Question{
		ID:         uuid.New(),
		Text:       in.Text,
		QType:      in.QType,
		IsArchived: in.Archived,
	}
	if len(in.Options) > 0 {
		q.Options = toJSON(in.Options)
	}
	if len(in.DisplayValues) > 0 {
		q.DisplayValues = toJSON(in.DisplayValues)
	}
	if len(in.OptionWeights) > 0 {
		q.OptionWeights = toJSON(in.OptionWeights)
	}
	if in.DefaultOption != "" {
		def := in.DefaultOption
		q.DefaultOption = &def
	}
	if err := s.repo.Create(dbc, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionService) Diff(current *types.Question, in QuestionInput) map[string]interface{} {
	updates := map[string]interface{}{}
	if len(in.Options) > 0 && !jsonEqual(current.Options, in.Options) {
		updates["options"] = toJSON(in.Options)
	}
	if len(in.DisplayValues) > 0 && !jsonEqual(current.DisplayValues, in.DisplayValues) {
		updates["display_values"] = toJSON(in.DisplayValues)
	}
	if len(in.OptionWeights) > 0 && !jsonEqual(current.OptionWeights, in.OptionWeights) {
		updates["option_weights"] = toJSON(in.OptionWeights)
	}
	if in.DefaultOption != "" {
		if current.DefaultOption == nil || *current.DefaultOption != in.DefaultOption {
			updates["default_option"] = in.DefaultOption
		}
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	return updates
}

func (s *questionService) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return s.repo.UpdateFields(dbc, id, updates)
}
