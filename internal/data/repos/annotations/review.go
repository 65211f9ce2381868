package annotations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type ReviewRepo interface {
	GetByAnswer(dbc dbctx.Context, answerID uuid.UUID) (*types.AnswerReview, error)
	Upsert(dbc dbctx.Context, row *types.AnswerReview) error
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) GetByAnswer(dbc dbctx.Context, answerID uuid.UUID) (*types.AnswerReview, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.AnswerReview
	err := t.WithContext(dbc.Ctx).Where("answer_id = ?", answerID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reviewRepo) Upsert(dbc dbctx.Context, row *types.AnswerReview) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"reviewer_id",
				"comment",
				"updated_at",
			}),
		}).
		Create(row).Error
}
