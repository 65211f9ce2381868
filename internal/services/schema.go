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

type SchemaInput struct {
	Name             string
	InstructionsURL  string
	HasCustomDisplay bool
	GroupTitles      []string // ordered
	Archived         bool
}

type SchemaService interface {
	ValidateNew(dbc dbctx.Context, in SchemaInput) error
	ValidateUpdate(dbc dbctx.Context, current *types.Schema, in SchemaInput) error
	Create(dbc dbctx.Context, in SchemaInput) (*types.Schema, error)
	Update(dbc dbctx.Context, current *types.Schema, in SchemaInput) (changed bool, err error)
	MemberTitles(dbc dbctx.Context, schemaID uuid.UUID) ([]string, error)
}

type schemaService struct {
	schemas taxonomy.SchemaRepo
	groups  taxonomy.QuestionGroupRepo
	log     *logger.Logger
}

func NewSchemaService(schemas taxonomy.SchemaRepo, groups taxonomy.QuestionGroupRepo, baseLog *logger.Logger) SchemaService {
	return &schemaService{schemas: schemas, groups: groups, log: baseLog.With("service", "SchemaService")}
}

// MemberTitles returns the schema's question group titles in position order.
func (s *schemaService) MemberTitles(dbc dbctx.Context, schemaID uuid.UUID) ([]string, error) {
	ids, err := s.schemas.GroupIDsInOrder(dbc, schemaID)
	if err != nil {
		return nil, err
	}
	rows, err := s.groups.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(rows))
	for _, g := range rows {
		titles[g.ID] = g.Title
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, titles[id])
	}
	return out, nil
}

// resolveGroups maps group titles to rows, erroring on any unknown title.
func (s *schemaService) resolveGroups(dbc dbctx.Context, schemaName string, titles []string) ([]*types.QuestionGroup, error) {
	rows, err := s.groups.GetByTitles(dbc, titles)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]*types.QuestionGroup, len(rows))
	for _, g := range rows {
		byTitle[g.Title] = g
	}
	out := make([]*types.QuestionGroup, 0, len(titles))
	for _, title := range titles {
		g, ok := byTitle[title]
		if !ok {
			return nil, fmt.Errorf("schema %q references unknown question group %q", schemaName, title)
		}
		out = append(out, g)
	}
	return out, nil
}

// checkReusability rejects attaching any non-reusable group that a different
// schema already owns.
func (s *schemaService) checkReusability(dbc dbctx.Context, schemaName string, groups []*types.QuestionGroup) error {
	for _, g := range groups {
		if g.IsReusable {
			continue
		}
		owners, err := s.groups.SchemasUsingGroup(dbc, g.ID)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(owners))
		for _, o := range owners {
			names = append(names, o.Name)
		}
		if err := validate.ReusableExclusive(g.Title, g.IsReusable, names, schemaName); err != nil {
			return err
		}
	}
	return nil
}

func (s *schemaService) ValidateNew(dbc dbctx.Context, in SchemaInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(in.GroupTitles) == 0 {
		return fmt.Errorf("schema %q has no question groups", in.Name)
	}
	if err := validate.NoDuplicates("question group", in.GroupTitles); err != nil {
		return fmt.Errorf("schema %q: %w", in.Name, err)
	}
	groups, err := s.resolveGroups(dbc, in.Name, in.GroupTitles)
	if err != nil {
		return err
	}
	return s.checkReusability(dbc, in.Name, groups)
}

func (s *schemaService) ValidateUpdate(dbc dbctx.Context, current *types.Schema, in SchemaInput) error {
	if len(in.GroupTitles) == 0 {
		return nil
	}
	if err := validate.NoDuplicates("question group", in.GroupTitles); err != nil {
		return fmt.Errorf("schema %q: %w", current.Name, err)
	}
	stored, err := s.MemberTitles(dbc, current.ID)
	if err != nil {
		return err
	}
	if err := validate.SameMemberSet("question group", stored, in.GroupTitles); err != nil {
		return fmt.Errorf("schema %q: %w", current.Name, err)
	}
	groups, err := s.resolveGroups(dbc, current.Name, in.GroupTitles)
	if err != nil {
		return err
	}
	return s.checkReusability(dbc, current.Name, groups)
}

func (s *schemaService) Create(dbc dbctx.Context, in SchemaInput) (*types.Schema, error) {
	row := &types.Schema{
		ID:               uuid.New(),
		Name:             in.Name,
		InstructionsURL:  in.InstructionsURL,
		HasCustomDisplay: in.HasCustomDisplay,
		IsArchived:       in.Archived,
	}
	if err := s.schemas.Create(dbc, row); err != nil {
		return nil, err
	}
	groups, err := s.resolveGroups(dbc, in.Name, in.GroupTitles)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	if err := s.schemas.ReplaceGroupOrder(dbc, row.ID, ids); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *schemaService) Update(dbc dbctx.Context, current *types.Schema, in SchemaInput) (bool, error) {
	changed := false

	updates := map[string]interface{}{}
	if in.InstructionsURL != "" && in.InstructionsURL != current.InstructionsURL {
		updates["instructions_url"] = in.InstructionsURL
	}
	if in.HasCustomDisplay != current.HasCustomDisplay {
		updates["has_custom_display"] = in.HasCustomDisplay
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	if len(updates) > 0 {
		if err := s.schemas.UpdateFields(dbc, current.ID, updates); err != nil {
			return false, err
		}
		changed = true
	}

	if len(in.GroupTitles) == 0 {
		return changed, nil
	}
	groups, err := s.resolveGroups(dbc, current.Name, in.GroupTitles)
	if err != nil {
		return changed, err
	}
	desired := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		desired = append(desired, g.ID)
	}
	stored, err := s.schemas.GroupIDsInOrder(dbc, current.ID)
	if err != nil {
		return changed, err
	}
	if !uuidSlicesEqual(stored, desired) {
		if err := s.schemas.ReplaceGroupOrder(dbc, current.ID, desired); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
