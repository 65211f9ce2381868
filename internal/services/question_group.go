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

type QuestionGroupInput struct {
	Title                string
	Description          string
	IsReusable           bool
	IsAutoSubmit         bool
	VerificationFunction string
	Questions            []QuestionInput // ordered
	Archived             bool
}

type QuestionGroupService interface {
	ValidateNew(dbc dbctx.Context, in QuestionGroupInput) error
	ValidateUpdate(dbc dbctx.Context, current *types.QuestionGroup, in QuestionGroupInput) error
	Create(dbc dbctx.Context, in QuestionGroupInput) (*types.QuestionGroup, error)
	Update(dbc dbctx.Context, current *types.QuestionGroup, in QuestionGroupInput) (changed bool, err error)
	MemberTexts(dbc dbctx.Context, groupID uuid.UUID) ([]string, error)
}

type questionGroupService struct {
	groups    taxonomy.QuestionGroupRepo
	questions taxonomy.QuestionRepo
	qsvc      QuestionService
	log       *logger.Logger
}

func NewQuestionGroupService(groups taxonomy.QuestionGroupRepo, questions taxonomy.QuestionRepo, qsvc QuestionService, baseLog *logger.Logger) QuestionGroupService {
	return &questionGroupService{
		groups:    groups,
		questions: questions,
		qsvc:      qsvc,
		log:       baseLog.With("service", "QuestionGroupService"),
	}
}

func questionTexts(ins []QuestionInput) []string {
	out := make([]string, 0, len(ins))
	for _, q := range ins {
		out = append(out, q.Text)
	}
	return out
}

// MemberTexts returns the group's question texts in position order.
func (s *questionGroupService) MemberTexts(dbc dbctx.Context, groupID uuid.UUID) ([]string, error) {
	ids, err := s.groups.QuestionIDsInOrder(dbc, groupID)
	if err != nil {
		return nil, err
	}
	rows, err := s.questions.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]string, len(rows))
	for _, q := range rows {
		byID[q.ID] = q.Text
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

func (s *questionGroupService) ValidateNew(dbc dbctx.Context, in QuestionGroupInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("question group title is required")
	}
	if len(in.Questions) == 0 {
		return fmt.Errorf("question group %q has no questions", in.Title)
	}
	if err := validate.NoDuplicates("question", questionTexts(in.Questions)); err != nil {
		return fmt.Errorf("question group %q: %w", in.Title, err)
	}
	for _, qin := range in.Questions {
		existing, err := s.questions.GetByText(dbc, qin.Text)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.qsvc.ValidateUpdate(existing, qin); err != nil {
				return err
			}
			continue
		}
		if err := s.qsvc.ValidateNew(qin); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdate enforces member-set immutability: the proposed question set
// must equal the stored one, only ordering and per-question attributes may
// change.
func (s *questionGroupService) ValidateUpdate(dbc dbctx.Context, current *types.QuestionGroup, in QuestionGroupInput) error {
	if len(in.Questions) == 0 {
		return nil
	}
	proposed := questionTexts(in.Questions)
	if err := validate.NoDuplicates("question", proposed); err != nil {
		return fmt.Errorf("question group %q: %w", current.Title, err)
	}
	stored, err := s.MemberTexts(dbc, current.ID)
	if err != nil {
		return err
	}
	if err := validate.SameMemberSet("question", stored, proposed); err != nil {
		return fmt.Errorf("question group %q: %w", current.Title, err)
	}
	for _, qin := range in.Questions {
		existing, err := s.questions.GetByText(dbc, qin.Text)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("question group %q references unknown question %q", current.Title, qin.Text)
		}
		if err := s.qsvc.ValidateUpdate(existing, qin); err != nil {
			return err
		}
	}
	return nil
}

// ensureQuestions creates missing questions and applies attribute diffs to
// existing ones, returning the member ids in document order.
func (s *questionGroupService) ensureQuestions(dbc dbctx.Context, ins []QuestionInput) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ins))
	for _, qin := range ins {
		existing, err := s.questions.GetByText(dbc, qin.Text)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			created, err := s.qsvc.Create(dbc, qin)
			if err != nil {
				return nil, err
			}
			out = append(out, created.ID)
			continue
		}
		if updates := s.qsvc.Diff(existing, qin); len(updates) > 0 {
			if err := s.qsvc.Update(dbc, existing.ID, updates); err != nil {
				return nil, err
			}
		}
		out = append(out, existing.ID)
	}
	return out, nil
}

func (s *questionGroupService) Create(dbc dbctx.Context, in QuestionGroupInput) (*types.QuestionGroup, error) {
	g := &types.QuestionGroup{
		ID:                   uuid.New(),
		Title:                in.Title,
		Description:          in.Description,
		IsReusable:           in.IsReusable,
		IsAutoSubmit:         in.IsAutoSubmit,
		VerificationFunction: in.VerificationFunction,
		IsArchived:           in.Archived,
	}
	if err := s.groups.Create(dbc, g); err != nil {
		return nil, err
	}
	ids, err := s.ensureQuestions(dbc, in.Questions)
	if err != nil {
		return nil, err
	}
	if err := s.groups.ReplaceQuestionOrder(dbc, g.ID, ids); err != nil {
		return nil, err
	}
	return g, nil
}

// Update applies the attribute diff, member-question diffs, and any ordering
// change. It reports whether anything was actually written.
func (s *questionGroupService) Update(dbc dbctx.Context, current *types.QuestionGroup, in QuestionGroupInput) (bool, error) {
	changed := false

	updates := map[string]interface{}{}
	if in.Description != "" && in.Description != current.Description {
		updates["description"] = in.Description
	}
	if in.IsReusable != current.IsReusable {
		updates["is_reusable"] = in.IsReusable
	}
	if in.IsAutoSubmit != current.IsAutoSubmit {
		updates["is_auto_submit"] = in.IsAutoSubmit
	}
	if in.VerificationFunction != "" && in.VerificationFunction != current.VerificationFunction {
		updates["verification_function"] = in.VerificationFunction
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	if len(updates) > 0 {
		if err := s.groups.UpdateFields(dbc, current.ID, updates); err != nil {
			return false, err
		}
		changed = true
	}
	if in.Archived && !current.IsArchived {
		if err := s.archiveMemberQuestions(dbc, current.ID); err != nil {
			return changed, err
		}
	}

	if len(in.Questions) == 0 {
		return changed, nil
	}

	for _, qin := range in.Questions {
		existing, err := s.questions.GetByText(dbc, qin.Text)
		if err != nil {
			return changed, err
		}
		if existing == nil {
			return changed, fmt.Errorf("question group %q references unknown question %q", current.Title, qin.Text)
		}
		if qUpdates := s.qsvc.Diff(existing, qin); len(qUpdates) > 0 {
			if err := s.qsvc.Update(dbc, existing.ID, qUpdates); err != nil {
				return changed, err
			}
			changed = true
		}
	}

	desired := make([]uuid.UUID, 0, len(in.Questions))
	for _, qin := range in.Questions {
		q, err := s.questions.GetByText(dbc, qin.Text)
		if err != nil {
			return changed, err
		}
		desired = append(desired, q.ID)
	}
	stored, err := s.groups.QuestionIDsInOrder(dbc, current.ID)
	if err != nil {
		return changed, err
	}
	if !uuidSlicesEqual(stored, desired) {
		if err := s.groups.ReplaceQuestionOrder(dbc, current.ID, desired); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// archiveMemberQuestions retires the group's questions along with the group,
// except those still referenced by another non-archived group.
func (s *questionGroupService) archiveMemberQuestions(dbc dbctx.Context, groupID uuid.UUID) error {
	ids, err := s.groups.QuestionIDsInOrder(dbc, groupID)
	if err != nil {
		return err
	}
	for _, qid := range ids {
		holders, err := s.groups.GroupsUsingQuestion(dbc, qid)
		if err != nil {
			return err
		}
		shared := false
		for _, g := range holders {
			if g.ID != groupID && !g.IsArchived {
				shared = true
				break
			}
		}
		if shared {
			continue
		}
		if err := s.questions.UpdateFields(dbc, qid, map[string]interface{}{"is_archived": true}); err != nil {
			return err
		}
	}
	return nil
}

func uuidSlicesEqual(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
