package taxonomy

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type SchemaRepo interface {
	GetByName(dbc dbctx.Context, name string) (*types.Schema, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Schema, error)
	Create(dbc dbctx.Context, s *types.Schema) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	GroupIDsInOrder(dbc dbctx.Context, schemaID uuid.UUID) ([]uuid.UUID, error)
	ReplaceGroupOrder(dbc dbctx.Context, schemaID uuid.UUID, orderedGroupIDs []uuid.UUID) error
}

type schemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchemaRepo(db *gorm.DB, baseLog *logger.Logger) SchemaRepo {
	return &schemaRepo{db: db, log: baseLog.With("repo", "SchemaRepo")}
}

func (r *schemaRepo) GetByName(dbc dbctx.Context, name string) (*types.Schema, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Schema
	err := t.WithContext(dbc.Ctx).Where("name = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *schemaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Schema, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Schema
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *schemaRepo) Create(dbc dbctx.Context, s *types.Schema) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(s).Error
}

func (r *schemaRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Schema{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *schemaRepo) GroupIDsInOrder(dbc dbctx.Context, schemaID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var entries []*types.SchemaGroupEntry
	if err := t.WithContext(dbc.Ctx).
		Where("schema_id = ?", schemaID).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.QuestionGroupID)
	}
	return out, nil
}

func (r *schemaRepo) ReplaceGroupOrder(dbc dbctx.Context, schemaID uuid.UUID, orderedGroupIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Where("schema_id = ?", schemaID).
		Delete(&types.SchemaGroupEntry{}).Error; err != nil {
		return err
	}
	for i, gid := range orderedGroupIDs {
		entry := &types.SchemaGroupEntry{
			ID:              uuid.New(),
			SchemaID:        schemaID,
			QuestionGroupID: gid,
			Position:        i,
		}
		if err := t.WithContext(dbc.Ctx).Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}
