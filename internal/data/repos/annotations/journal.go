package annotations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type JournalRepo interface {
	Append(dbc dbctx.Context, row *types.SyncJournal) error
	MarkDone(dbc dbctx.Context, id uuid.UUID) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, reason string) error
	ListByBatch(dbc dbctx.Context, batchID uuid.UUID) ([]*types.SyncJournal, error)
}

type journalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return &journalRepo{db: db, log: baseLog.With("repo", "JournalRepo")}
}

func (r *journalRepo) Append(dbc dbctx.Context, row *types.SyncJournal) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = types.JournalStatusStarted
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *journalRepo) MarkDone(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.SyncJournal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": types.JournalStatusDone, "updated_at": time.Now().UTC()}).Error
}

func (r *journalRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, reason string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.SyncJournal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     types.JournalStatusFailed,
			"error":      reason,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *journalRepo) ListByBatch(dbc dbctx.Context, batchID uuid.UUID) ([]*types.SyncJournal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SyncJournal
	if err := t.WithContext(dbc.Ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
