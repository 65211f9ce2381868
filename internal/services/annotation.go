package services

import (
	"fmt"

	"github.com/google/uuid"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type AnswerInput struct {
	ProjectName  string
	VideoUID     string
	QuestionText string
	UserIDStr    string
	Value        string
	Confidence   *float64
	Notes        string
}

type ReviewInput struct {
	ProjectName  string
	VideoUID     string
	QuestionText string
	UserIDStr    string // the answer's author
	ReviewerID   string
	Status       string
	Comment      string
}

// answerTuple is an AnswerInput with its natural keys resolved to row ids.
type answerTuple struct {
	project  *types.Project
	video    *types.Video
	question *types.Question
	user     *types.User
}

type AnnotationService interface {
	ValidateAnswer(dbc dbctx.Context, in AnswerInput) error
	SubmitAnswer(dbc dbctx.Context, in AnswerInput) (created bool, changed bool, err error)
	SubmitReview(dbc dbctx.Context, in ReviewInput) error
}

type annotationService struct {
	answers   annrepos.AnswerRepo
	reviews   annrepos.ReviewRepo
	displays  annrepos.CustomDisplayRepo
	roles     projectrepos.RoleRepo
	projects  projectrepos.ProjectRepo
	videos    videos.VideoRepo
	questions taxonomy.QuestionRepo
	users     users.UserRepo
	log       *logger.Logger
}

func NewAnnotationService(
	answers annrepos.AnswerRepo,
	reviews annrepos.ReviewRepo,
	displays annrepos.CustomDisplayRepo,
	roles projectrepos.RoleRepo,
	projects projectrepos.ProjectRepo,
	vids videos.VideoRepo,
	questions taxonomy.QuestionRepo,
	usersRepo users.UserRepo,
	baseLog *logger.Logger,
) AnnotationService {
	return &annotationService{
		answers:   answers,
		reviews:   reviews,
		displays:  displays,
		roles:     roles,
		projects:  projects,
		videos:    vids,
		questions: questions,
		users:     usersRepo,
		log:       baseLog.With("service", "AnnotationService"),
	}
}

func (s *annotationService) resolve(dbc dbctx.Context, projectName, videoUID, questionText, userIDStr string) (*answerTuple, error) {
	p, err := s.projects.GetByName(dbc, projectName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("unknown project %q", projectName)
	}
	v, err := s.videos.GetByUID(dbc, videoUID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("unknown video %q", videoUID)
	}
	q, err := s.questions.GetByText(dbc, questionText)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("unknown question %q", questionText)
	}
	u, err := s.users.GetByIDStr(dbc, userIDStr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("unknown user %q", userIDStr)
	}
	return &answerTuple{project: p, video: v, question: q, user: u}, nil
}

// requireCapability checks the user's active role on the project grants the
// given capability (reviewer implies annotator, admin implies both).
func (s *annotationService) requireCapability(dbc dbctx.Context, userID, projectID uuid.UUID, capability, userIDStr string) error {
	role, err := s.roles.ActiveRole(dbc, userID, projectID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("user %q holds no active role on this project", userIDStr)
	}
	if !types.RoleImplies(role.Role, capability) {
		return fmt.Errorf("user %q role %q does not grant %s capability", userIDStr, role.Role, capability)
	}
	return nil
}

// effectiveOptions is the question's option list, replaced by the custom
// display override when one exists for this (project, video, question).
func (s *annotationService) effectiveOptions(dbc dbctx.Context, tuple *answerTuple) ([]string, error) {
	display, err := s.displays.GetByTuple(dbc, tuple.project.ID, tuple.video.ID, tuple.question.ID)
	if err != nil {
		return nil, err
	}
	if display != nil {
		if custom := stringsFromJSON(display.CustomOptions); len(custom) > 0 {
			return custom, nil
		}
	}
	return stringsFromJSON(tuple.question.Options), nil
}

func (s *annotationService) validateValue(dbc dbctx.Context, tuple *answerTuple, value string) error {
	if tuple.question.QType != types.QuestionTypeSingle {
		return nil
	}
	options, err := s.effectiveOptions(dbc, tuple)
	if err != nil {
		return err
	}
	for _, o := range options {
		if o == value {
			return nil
		}
	}
	return fmt.Errorf("answer %q is not an option of question %q", value, tuple.question.Text)
}

func (s *annotationService) ValidateAnswer(dbc dbctx.Context, in AnswerInput) error {
	tuple, err := s.resolve(dbc, in.ProjectName, in.VideoUID, in.QuestionText, in.UserIDStr)
	if err != nil {
		return err
	}
	if err := s.requireCapability(dbc, tuple.user.ID, tuple.project.ID, types.RoleAnnotator, in.UserIDStr); err != nil {
		return err
	}
	return s.validateValue(dbc, tuple, in.Value)
}

func (s *annotationService) SubmitAnswer(dbc dbctx.Context, in AnswerInput) (bool, bool, error) {
	tuple, err := s.resolve(dbc, in.ProjectName, in.VideoUID, in.QuestionText, in.UserIDStr)
	if err != nil {
		return false, false, err
	}
	if err := s.requireCapability(dbc, tuple.user.ID, tuple.project.ID, types.RoleAnnotator, in.UserIDStr); err != nil {
		return false, false, err
	}
	if err := s.validateValue(dbc, tuple, in.Value); err != nil {
		return false, false, err
	}

	existing, err := s.answers.GetByTuple(dbc, tuple.video.ID, tuple.question.ID, tuple.project.ID, tuple.user.ID)
	if err != nil {
		return false, false, err
	}
	if existing != nil &&
		existing.AnswerValue == in.Value &&
		existing.Notes == in.Notes &&
		floatPtrEqual(existing.Confidence, in.Confidence) {
		return false, false, nil
	}

	row := &types.AnnotatorAnswer{
		VideoID:     tuple.video.ID,
		QuestionID:  tuple.question.ID,
		ProjectID:   tuple.project.ID,
		UserID:      tuple.user.ID,
		AnswerValue: in.Value,
		Confidence:  in.Confidence,
		Notes:       in.Notes,
	}
	if existing != nil {
		row.ID = existing.ID
	}
	if err := s.answers.Upsert(dbc, row); err != nil {
		return false, false, err
	}
	return existing == nil, true, nil
}

func (s *annotationService) SubmitReview(dbc dbctx.Context, in ReviewInput) error {
	switch in.Status {
	case types.ReviewStatusPending, types.ReviewStatusApproved, types.ReviewStatusRejected:
	default:
		return fmt.Errorf("unknown review status %q", in.Status)
	}
	tuple, err := s.resolve(dbc, in.ProjectName, in.VideoUID, in.QuestionText, in.UserIDStr)
	if err != nil {
		return err
	}
	reviewer, err := s.users.GetByIDStr(dbc, in.ReviewerID)
	if err != nil {
		return err
	}
	if reviewer == nil {
		return fmt.Errorf("unknown reviewer %q", in.ReviewerID)
	}
	if err := s.requireCapability(dbc, reviewer.ID, tuple.project.ID, types.RoleReviewer, in.ReviewerID); err != nil {
		return err
	}
	answer, err := s.answers.GetByTuple(dbc, tuple.video.ID, tuple.question.ID, tuple.project.ID, tuple.user.ID)
	if err != nil {
		return err
	}
	if answer == nil {
		return fmt.Errorf("no answer by %q on video %q question %q to review", in.UserIDStr, in.VideoUID, in.QuestionText)
	}
	return s.reviews.Upsert(dbc, &types.AnswerReview{
		AnswerID:   answer.ID,
		Status:     in.Status,
		ReviewerID: reviewer.ID,
		Comment:    in.Comment,
	})
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
