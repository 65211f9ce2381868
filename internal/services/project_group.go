package services

import (
	"fmt"

	"github.com/google/uuid"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/modules/sync/validate"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type ProjectGroupInput struct {
	Name         string
	Description  string
	ProjectNames []string
	Archived     bool
}

type ProjectGroupService interface {
	ValidateMembership(dbc dbctx.Context, memberIDs []uuid.UUID) error
	Ensure(dbc dbctx.Context, in ProjectGroupInput) (created bool, changed bool, err error)
}

type projectGroupService struct {
	groups   projectrepos.ProjectGroupRepo
	projects projectrepos.ProjectRepo
	videos   videos.VideoRepo
	log      *logger.Logger
}

func NewProjectGroupService(groups projectrepos.ProjectGroupRepo, projects projectrepos.ProjectRepo, vids videos.VideoRepo, baseLog *logger.Logger) ProjectGroupService {
	return &projectGroupService{
		groups:   groups,
		projects: projects,
		videos:   vids,
		log:      baseLog.With("service", "ProjectGroupService"),
	}
}

// ValidateMembership enforces pairwise overlap exclusion across the proposed
// member set: any two members whose non-archived question sets intersect must
// have disjoint non-archived video sets.
func (s *projectGroupService) ValidateMembership(dbc dbctx.Context, memberIDs []uuid.UUID) error {
	rows, err := s.projects.GetByIDs(dbc, memberIDs)
	if err != nil {
		return err
	}
	names := make(map[uuid.UUID]string, len(rows))
	for _, p := range rows {
		names[p.ID] = p.Name
	}

	questions := make(map[uuid.UUID][]string, len(memberIDs))
	videoUIDs := make(map[uuid.UUID][]string, len(memberIDs))
	for _, id := range memberIDs {
		qids, err := s.projects.ActiveQuestionIDs(dbc, id)
		if err != nil {
			return err
		}
		qs := make([]string, 0, len(qids))
		for _, q := range qids {
			qs = append(qs, q.String())
		}
		questions[id] = qs

		vids, err := s.videos.ListActiveByProject(dbc, id)
		if err != nil {
			return err
		}
		uids := make([]string, 0, len(vids))
		for _, v := range vids {
			uids = append(uids, v.VideoUID)
		}
		videoUIDs[id] = uids
	}

	for i := 0; i < len(memberIDs); i++ {
		for j := i + 1; j < len(memberIDs); j++ {
			a, b := memberIDs[i], memberIDs[j]
			sharedQ := validate.Intersect(questions[a], questions[b])
			if len(sharedQ) == 0 {
				continue
			}
			sharedV := validate.Intersect(videoUIDs[a], videoUIDs[b])
			if err := validate.ProjectPairExclusion(names[a], names[b], sharedQ, sharedV); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ensure creates or reconciles the group and its membership. Membership is
// validated against overlap exclusion before any write.
func (s *projectGroupService) Ensure(dbc dbctx.Context, in ProjectGroupInput) (bool, bool, error) {
	desired := make([]uuid.UUID, 0, len(in.ProjectNames))
	for _, name := range in.ProjectNames {
		p, err := s.projects.GetByName(dbc, name)
		if err != nil {
			return false, false, err
		}
		if p == nil {
			return false, false, fmt.Errorf("project group %q references unknown project %q", in.Name, name)
		}
		desired = append(desired, p.ID)
	}
	if err := s.ValidateMembership(dbc, desired); err != nil {
		return false, false, err
	}

	existing, err := s.groups.GetByName(dbc, in.Name)
	if err != nil {
		return false, false, err
	}
	if existing == nil {
		g := &types.ProjectGroup{
			ID:          uuid.New(),
			Name:        in.Name,
			Description: in.Description,
			IsArchived:  in.Archived,
		}
		if err := s.groups.Create(dbc, g); err != nil {
			return false, false, err
		}
		for _, pid := range desired {
			if err := s.groups.AddProject(dbc, g.ID, pid); err != nil {
				return false, false, err
			}
		}
		return true, true, nil
	}

	changed := false
	updates := map[string]interface{}{}
	if in.Description != "" && in.Description != existing.Description {
		updates["description"] = in.Description
	}
	if in.Archived != existing.IsArchived {
		updates["is_archived"] = in.Archived
	}
	if len(updates) > 0 {
		if err := s.groups.UpdateFields(dbc, existing.ID, updates); err != nil {
			return false, false, err
		}
		changed = true
	}

	stored, err := s.groups.MemberProjectIDs(dbc, existing.ID)
	if err != nil {
		return false, changed, err
	}
	storedSet := make(map[uuid.UUID]struct{}, len(stored))
	for _, id := range stored {
		storedSet[id] = struct{}{}
	}
	desiredSet := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}
	for _, id := range desired {
		if _, ok := storedSet[id]; !ok {
			if err := s.groups.AddProject(dbc, existing.ID, id); err != nil {
				return false, changed, err
			}
			changed = true
		}
	}
	for _, id := range stored {
		if _, ok := desiredSet[id]; !ok {
			if err := s.groups.RemoveProject(dbc, existing.ID, id); err != nil {
				return false, changed, err
			}
			changed = true
		}
	}
	return false, changed, nil
}
