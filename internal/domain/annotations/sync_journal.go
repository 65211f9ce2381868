package annotations

import (
	"time"

	"github.com/google/uuid"
)

const (
	JournalStatusStarted = "started"
	JournalStatusDone    = "done"
	JournalStatusFailed  = "failed"
)

// SyncJournal records each apply-phase mutation of a sync batch so a crashed
// batch can be inspected and the rerun path audited.
type SyncJournal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID   uuid.UUID `gorm:"type:uuid;not null;index;column:batch_id" json:"batch_id"`
	Kind      string    `gorm:"not null;column:kind" json:"kind"`
	EntityKey string    `gorm:"not null;column:entity_key" json:"entity_key"`
	Action    string    `gorm:"not null;column:action" json:"action"`
	Status    string    `gorm:"not null;column:status" json:"status"`
	Error     string    `gorm:"column:error" json:"error"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SyncJournal) TableName() string { return "sync_journal" }
