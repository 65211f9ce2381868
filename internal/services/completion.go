package services

import (
	"time"

	"github.com/google/uuid"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

// CompletionService keeps role_assignment.completion_percent in step with the
// answer and ground-truth tables. The denominator is always the live one:
// non-archived questions times non-archived videos, so archiving recalculates
// completion rather than freezing it.
type CompletionService interface {
	RecalcAnnotator(dbc dbctx.Context, projectID, userID uuid.UUID) (float64, error)
	RecalcReviewers(dbc dbctx.Context, projectID uuid.UUID) (float64, error)
	RecalcProject(dbc dbctx.Context, projectID uuid.UUID) error
}

type completionService struct {
	projects projectrepos.ProjectRepo
	roles    projectrepos.RoleRepo
	answers  annrepos.AnswerRepo
	truths   annrepos.GroundTruthRepo
	log      *logger.Logger
}

func NewCompletionService(
	projects projectrepos.ProjectRepo,
	roles projectrepos.RoleRepo,
	answers annrepos.AnswerRepo,
	truths annrepos.GroundTruthRepo,
	baseLog *logger.Logger,
) CompletionService {
	return &completionService{
		projects: projects,
		roles:    roles,
		answers:  answers,
		truths:   truths,
		log:      baseLog.With("service", "CompletionService"),
	}
}

func percentOf(submitted, expected int64) float64 {
	if expected <= 0 {
		return 0
	}
	p := float64(submitted) / float64(expected) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func (s *completionService) denominator(dbc dbctx.Context, projectID uuid.UUID) ([]uuid.UUID, []uuid.UUID, int64, error) {
	qids, err := s.projects.ActiveQuestionIDs(dbc, projectID)
	if err != nil {
		return nil, nil, 0, err
	}
	vids, err := s.projects.ActiveVideoIDs(dbc, projectID)
	if err != nil {
		return nil, nil, 0, err
	}
	return qids, vids, int64(len(qids)) * int64(len(vids)), nil
}

// stamp writes the percent and manages the completed_at timestamp: set when
// the percent first reaches 100, cleared when it drops back below.
func (s *completionService) stamp(dbc dbctx.Context, role *types.RoleAssignment, percent float64) error {
	var completedAt *time.Time
	if percent >= 100 {
		if role.CompletedAt != nil {
			completedAt = role.CompletedAt
		} else {
			now := time.Now().UTC()
			completedAt = &now
		}
	}
	if role.CompletionPercent == percent &&
		((role.CompletedAt == nil) == (completedAt == nil)) {
		return nil
	}
	return s.roles.SetCompletion(dbc, role.ID, percent, completedAt)
}

func (s *completionService) RecalcAnnotator(dbc dbctx.Context, projectID, userID uuid.UUID) (float64, error) {
	role, err := s.roles.ActiveRole(dbc, userID, projectID)
	if err != nil {
		return 0, err
	}
	if role == nil {
		return 0, nil
	}
	qids, vids, expected, err := s.denominator(dbc, projectID)
	if err != nil {
		return 0, err
	}
	submitted, err := s.answers.CountByProjectUser(dbc, projectID, userID, qids, vids)
	if err != nil {
		return 0, err
	}
	percent := percentOf(submitted, expected)
	return percent, s.stamp(dbc, role, percent)
}

// RecalcReviewers updates every reviewer-capable assignment on the project
// with the same percent: ground truth is project-shared, so reviewers reach
// 100 together.
func (s *completionService) RecalcReviewers(dbc dbctx.Context, projectID uuid.UUID) (float64, error) {
	qids, vids, expected, err := s.denominator(dbc, projectID)
	if err != nil {
		return 0, err
	}
	submitted, err := s.truths.CountByProject(dbc, projectID, qids, vids)
	if err != nil {
		return 0, err
	}
	percent := percentOf(submitted, expected)

	roles, err := s.roles.ActiveByProject(dbc, projectID)
	if err != nil {
		return 0, err
	}
	for _, role := range roles {
		if !types.RoleImplies(role.Role, types.RoleReviewer) {
			continue
		}
		if err := s.stamp(dbc, role, percent); err != nil {
			return 0, err
		}
	}
	return percent, nil
}

// RecalcProject refreshes every active assignment after a denominator change
// (video or question archived or added).
func (s *completionService) RecalcProject(dbc dbctx.Context, projectID uuid.UUID) error {
	roles, err := s.roles.ActiveByProject(dbc, projectID)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if types.RoleImplies(role.Role, types.RoleReviewer) {
			continue
		}
		if _, err := s.RecalcAnnotator(dbc, projectID, role.UserID); err != nil {
			return err
		}
	}
	_, err = s.RecalcReviewers(dbc, projectID)
	return err
}
