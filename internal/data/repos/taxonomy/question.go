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

type QuestionRepo interface {
	GetByText(dbc dbctx.Context, text string) (*types.Question, error)
	GetByTexts(dbc dbctx.Context, texts []string) ([]*types.Question, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Question, error)
	Create(dbc dbctx.Context, q *types.Question) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) GetByText(dbc dbctx.Context, text string) (*types.Question, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Question
	err := t.WithContext(dbc.Ctx).Where("text = ?", text).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *questionRepo) GetByTexts(dbc dbctx.Context, texts []string) ([]*types.Question, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Question
	if len(texts) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("text IN ?", texts).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Question, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Question
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

func (r *questionRepo) Create(dbc dbctx.Context, q *types.Question) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(q).Error
}

func (r *questionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("id = ?", id).
		Updates(updates).Error
}
