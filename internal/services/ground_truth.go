package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/modules/sync/validate"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type GroundTruthInput struct {
	ProjectName  string
	VideoUID     string
	QuestionText string
	ReviewerID   string
	Value        string
}

type GroundTruthService interface {
	ValidateSubmit(dbc dbctx.Context, in GroundTruthInput) error
	Submit(dbc dbctx.Context, in GroundTruthInput) (created bool, changed bool, err error)
	Override(dbc dbctx.Context, in GroundTruthInput) (created bool, changed bool, err error)
}

type groundTruthService struct {
	truths    annrepos.GroundTruthRepo
	roles     projectrepos.RoleRepo
	projects  projectrepos.ProjectRepo
	videos    videos.VideoRepo
	questions taxonomy.QuestionRepo
	users     users.UserRepo
	log       *logger.Logger
}

func NewGroundTruthService(
	truths annrepos.GroundTruthRepo,
	roles projectrepos.RoleRepo,
	projects projectrepos.ProjectRepo,
	vids videos.VideoRepo,
	questions taxonomy.QuestionRepo,
	usersRepo users.UserRepo,
	baseLog *logger.Logger,
) GroundTruthService {
	return &groundTruthService{
		truths:    truths,
		roles:     roles,
		projects:  projects,
		videos:    vids,
		questions: questions,
		users:     usersRepo,
		log:       baseLog.With("service", "GroundTruthService"),
	}
}

type gtTuple struct {
	project  *types.Project
	video    *types.Video
	question *types.Question
	reviewer *types.User
}

func (s *groundTruthService) resolve(dbc dbctx.Context, in GroundTruthInput) (*gtTuple, error) {
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
	u, err := s.users.GetByIDStr(dbc, in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("unknown user %q", in.ReviewerID)
	}
	return &gtTuple{project: p, video: v, question: q, reviewer: u}, nil
}

// checkLock rejects a plain reviewer write against an admin-locked row. The
// error names the admin and when the override happened.
func (s *groundTruthService) checkLock(dbc dbctx.Context, questionText string, existing *types.ReviewerGroundTruth) error {
	if !existing.AdminLocked() {
		return nil
	}
	adminStr := existing.ModifiedByAdminID.String()
	if admins, err := s.users.GetByIDs(dbc, []uuid.UUID{*existing.ModifiedByAdminID}); err == nil && len(admins) == 1 {
		adminStr = admins[0].UserIDStr
	}
	return validate.AdminLock(questionText, adminStr, existing.ModifiedByAdminAt)
}

func (s *groundTruthService) ValidateSubmit(dbc dbctx.Context, in GroundTruthInput) error {
	tuple, err := s.resolve(dbc, in)
	if err != nil {
		return err
	}
	role, err := s.roles.ActiveRole(dbc, tuple.reviewer.ID, tuple.project.ID)
	if err != nil {
		return err
	}
	if role == nil || !types.RoleImplies(role.Role, types.RoleReviewer) {
		return fmt.Errorf("user %q cannot submit ground truth for project %q", in.ReviewerID, in.ProjectName)
	}
	existing, err := s.truths.GetByTuple(dbc, tuple.video.ID, tuple.question.ID, tuple.project.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.checkLock(dbc, in.QuestionText, existing)
	}
	return nil
}

// Submit records a reviewer's canonical answer. Admin-locked rows reject the
// write; resubmitting the stored value is a no-op.
func (s *groundTruthService) Submit(dbc dbctx.Context, in GroundTruthInput) (bool, bool, error) {
	if err := s.ValidateSubmit(dbc, in); err != nil {
		return false, false, err
	}
	tuple, err := s.resolve(dbc, in)
	if err != nil {
		return false, false, err
	}
	existing, err := s.truths.GetByTuple(dbc, tuple.video.ID, tuple.question.ID, tuple.project.ID)
	if err != nil {
		return false, false, err
	}
	if existing == nil {
		row := &types.ReviewerGroundTruth{
			VideoID:       tuple.video.ID,
			QuestionID:    tuple.question.ID,
			ProjectID:     tuple.project.ID,
			AnswerValue:   in.Value,
			OriginalValue: in.Value,
			ReviewerID:    tuple.reviewer.ID,
		}
		if err := s.truths.Create(dbc, row); err != nil {
			return false, false, err
		}
		return true, true, nil
	}
	if existing.AnswerValue == in.Value {
		return false, false, nil
	}
	err = s.truths.UpdateFields(dbc, existing.ID, map[string]interface{}{
		"answer_value": in.Value,
		"reviewer_id":  tuple.reviewer.ID,
	})
	if err != nil {
		return false, false, err
	}
	return false, true, nil
}

// Override is the admin path. It bypasses the lock but only records the
// modified_by fields when the value actually differs from the stored one; a
// no-op override leaves the row untouched. original_value always keeps the
// first reviewer-submitted value.
func (s *groundTruthService) Override(dbc dbctx.Context, in GroundTruthInput) (bool, bool, error) {
	tuple, err := s.resolve(dbc, in)
	if err != nil {
		return false, false, err
	}
	if !tuple.reviewer.IsGlobalAdmin() {
		return false, false, fmt.Errorf("user %q is not a global admin", in.ReviewerID)
	}
	existing, err := s.truths.GetByTuple(dbc, tuple.video.ID, tuple.question.ID, tuple.project.ID)
	if err != nil {
		return false, false, err
	}
	now := time.Now().UTC()
	if existing == nil {
		row := &types.ReviewerGroundTruth{
			VideoID:           tuple.video.ID,
			QuestionID:        tuple.question.ID,
			ProjectID:         tuple.project.ID,
			AnswerValue:       in.Value,
			OriginalValue:     in.Value,
			ReviewerID:        tuple.reviewer.ID,
			ModifiedByAdminID: &tuple.reviewer.ID,
			ModifiedByAdminAt: &now,
		}
		if err := s.truths.Create(dbc, row); err != nil {
			return false, false, err
		}
		return true, true, nil
	}
	if existing.AnswerValue == in.Value {
		return false, false, nil
	}
	err = s.truths.UpdateFields(dbc, existing.ID, map[string]interface{}{
		"answer_value":         in.Value,
		"modified_by_admin_id": tuple.reviewer.ID,
		"modified_by_admin_at": now,
	})
	if err != nil {
		return false, false, err
	}
	return false, true, nil
}
