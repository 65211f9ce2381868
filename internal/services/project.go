package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	projectrepos "github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/modules/sync/validate"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type ProjectInput struct {
	Name        string
	SchemaName  string
	Description string
	VideoUIDs   []string
	Archived    bool
}

type ProjectService interface {
	ValidateNew(dbc dbctx.Context, in ProjectInput) error
	ValidateUpdate(dbc dbctx.Context, current *types.Project, in ProjectInput) error
	Create(dbc dbctx.Context, in ProjectInput) (*types.Project, error)
	Update(dbc dbctx.Context, current *types.Project, in ProjectInput) (changed bool, err error)
}

type projectService struct {
	projects projectrepos.ProjectRepo
	schemas  taxonomy.SchemaRepo
	videos   videos.VideoRepo
	log      *logger.Logger
}

func NewProjectService(projects projectrepos.ProjectRepo, schemas taxonomy.SchemaRepo, vids videos.VideoRepo, baseLog *logger.Logger) ProjectService {
	return &projectService{
		projects: projects,
		schemas:  schemas,
		videos:   vids,
		log:      baseLog.With("service", "ProjectService"),
	}
}

// resolveVideos maps uids to video ids in document order, erroring on any
// unknown uid.
func (s *projectService) resolveVideos(dbc dbctx.Context, projectName string, uids []string) ([]uuid.UUID, error) {
	rows, err := s.videos.GetByUIDs(dbc, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]uuid.UUID, len(rows))
	for _, v := range rows {
		byUID[v.VideoUID] = v.ID
	}
	out := make([]uuid.UUID, 0, len(uids))
	for _, uid := range uids {
		id, ok := byUID[uid]
		if !ok {
			return nil, fmt.Errorf("project %q references unknown video %q", projectName, uid)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *projectService) ValidateNew(dbc dbctx.Context, in ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	if strings.TrimSpace(in.SchemaName) == "" {
		return fmt.Errorf("project %q: schema is required", in.Name)
	}
	schema, err := s.schemas.GetByName(dbc, in.SchemaName)
	if err != nil {
		return err
	}
	if schema == nil {
		return fmt.Errorf("project %q references unknown schema %q", in.Name, in.SchemaName)
	}
	if err := validate.NoDuplicates("video", in.VideoUIDs); err != nil {
		return fmt.Errorf("project %q: %w", in.Name, err)
	}
	_, err = s.resolveVideos(dbc, in.Name, in.VideoUIDs)
	return err
}

// ValidateUpdate rejects a schema change: once a project has answers against
// a schema the taxonomy underneath cannot be swapped out.
func (s *projectService) ValidateUpdate(dbc dbctx.Context, current *types.Project, in ProjectInput) error {
	if in.SchemaName != "" {
		schema, err := s.schemas.GetByName(dbc, in.SchemaName)
		if err != nil {
			return err
		}
		if schema == nil {
			return fmt.Errorf("project %q references unknown schema %q", current.Name, in.SchemaName)
		}
		if schema.ID != current.SchemaID {
			return fmt.Errorf("project %q: schema cannot change after creation", current.Name)
		}
	}
	if err := validate.NoDuplicates("video", in.VideoUIDs); err != nil {
		return fmt.Errorf("project %q: %w", current.Name, err)
	}
	if len(in.VideoUIDs) > 0 {
		if _, err := s.resolveVideos(dbc, current.Name, in.VideoUIDs); err != nil {
			return err
		}
	}
	return nil
}

func (s *projectService) Create(dbc dbctx.Context, in ProjectInput) (*types.Project, error) {
	schema, err := s.schemas.GetByName(dbc, in.SchemaName)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("project %q references unknown schema %q", in.Name, in.SchemaName)
	}
	p := &types.Project{
		ID:          uuid.New(),
		Name:        in.Name,
		SchemaID:    schema.ID,
		Description: in.Description,
		IsArchived:  in.Archived,
	}
	if err := s.projects.Create(dbc, p); err != nil {
		return nil, err
	}
	if len(in.VideoUIDs) > 0 {
		ids, err := s.resolveVideos(dbc, in.Name, in.VideoUIDs)
		if err != nil {
			return nil, err
		}
		if err := s.projects.SetVideos(dbc, p.ID, ids); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *projectService) Update(dbc dbctx.Context, current *types.Project, in ProjectInput) (bool, error) {
	changed := false

	updates := map[string]interface{}{}
	if in.Description != "" && in.Description != current.Description {
		updates["description"] = in.Description
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	if len(updates) > 0 {
		if err := s.projects.UpdateFields(dbc, current.ID, updates); err != nil {
			return false, err
		}
		changed = true
	}

	if len(in.VideoUIDs) == 0 {
		return changed, nil
	}
	desired, err := s.resolveVideos(dbc, current.Name, in.VideoUIDs)
	if err != nil {
		return changed, err
	}
	stored, err := s.projects.VideoIDs(dbc, current.ID)
	if err != nil {
		return changed, err
	}
	if !sameIDSet(stored, desired) {
		if err := s.projects.SetVideos(dbc, current.ID, desired); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func sameIDSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
