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

type QuestionGroupRepo interface {
	GetByTitle(dbc dbctx.Context, title string) (*types.QuestionGroup, error)
	GetByTitles(dbc dbctx.Context, titles []string) ([]*types.QuestionGroup, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.QuestionGroup, error)
	Create(dbc dbctx.Context, g *types.QuestionGroup) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	QuestionIDsInOrder(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	ReplaceQuestionOrder(dbc dbctx.Context, groupID uuid.UUID, orderedQuestionIDs []uuid.UUID) error
	SchemasUsingGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.Schema, error)
	GroupsUsingQuestion(dbc dbctx.Context, questionID uuid.UUID) ([]*types.QuestionGroup, error)
}

type questionGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionGroupRepo(db *gorm.DB, baseLog *logger.Logger) QuestionGroupRepo {
	return &questionGroupRepo{db: db, log: baseLog.With("repo", "QuestionGroupRepo")}
}

func (r *questionGroupRepo) GetByTitle(dbc dbctx.Context, title string) (*types.QuestionGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.QuestionGroup
	err := t.WithContext(dbc.Ctx).Where("title = ?", title).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *questionGroupRepo) GetByTitles(dbc dbctx.Context, titles []string) ([]*types.QuestionGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuestionGroup
	if len(titles) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("title IN ?", titles).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionGroupRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.QuestionGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuestionGroup
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionGroupRepo) Create(dbc dbctx.Context, g *types.QuestionGroup) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(g).Error
}

func (r *questionGroupRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.QuestionGroup{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *questionGroupRepo) QuestionIDsInOrder(dbc dbctx.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var entries []*types.QuestionGroupEntry
	if err := t.WithContext(dbc.Ctx).
		Where("question_group_id = ?", groupID).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.QuestionID)
	}
	return out, nil
}

func (r *questionGroupRepo) ReplaceQuestionOrder(dbc dbctx.Context, groupID uuid.UUID, orderedQuestionIDs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).
		Where("question_group_id = ?", groupID).
		Delete(&types.QuestionGroupEntry{}).Error; err != nil {
		return err
	}
	for i, qid := range orderedQuestionIDs {
		entry := &types.QuestionGroupEntry{
			ID:              uuid.New(),
			QuestionGroupID: groupID,
			QuestionID:      qid,
			Position:        i,
		}
		if err := t.WithContext(dbc.Ctx).Create(entry).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *questionGroupRepo) SchemasUsingGroup(dbc dbctx.Context, groupID uuid.UUID) ([]*types.Schema, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Schema
	if err := t.WithContext(dbc.Ctx).
		Joins("JOIN schema_group_entry sge ON sge.schema_id = schema.id").
		Where("sge.question_group_id = ?", groupID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionGroupRepo) GroupsUsingQuestion(dbc dbctx.Context, questionID uuid.UUID) ([]*types.QuestionGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.QuestionGroup
	if err := t.WithContext(dbc.Ctx).
		Joins("JOIN question_group_entry qge ON qge.question_group_id = question_group.id").
		Where("qge.question_id = ?", questionID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
