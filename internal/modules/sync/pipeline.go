package sync

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	annrepos "github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

// Pipeline drives the two-phase reconciliation of one batch: per kind,
// plan (shape + classify), verify everything read-only, and only if the
// kind is fully clean, apply each operation in its own transaction.
type Pipeline struct {
	db      *gorm.DB
	journal annrepos.JournalRepo
	workers int
	batchID uuid.UUID
	log     *logger.Logger
	tracer  trace.Tracer
}

func NewPipeline(db *gorm.DB, journal annrepos.JournalRepo, workers int, baseLog *logger.Logger) *Pipeline {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		db:      db,
		journal: journal,
		workers: workers,
		batchID: uuid.New(),
		log:     baseLog.With("module", "sync"),
		tracer:  otel.Tracer("videolabel/sync"),
	}
}

func (p *Pipeline) BatchID() uuid.UUID { return p.batchID }

// Run reconciles the syncers in the order given. An aborted kind does not
// stop later kinds; the run report carries every kind's outcome.
func (p *Pipeline) Run(ctx context.Context, syncers []Syncer) *RunReport {
	rr := &RunReport{}
	for _, s := range syncers {
		if ctx.Err() != nil {
			rr.Kinds = append(rr.Kinds, &Report{
				Kind:   s.Kind(),
				State:  StateAborted,
				Failed: []Failure{{Key: s.Kind(), Reason: ctx.Err().Error()}},
			})
			continue
		}
		rr.Kinds = append(rr.Kinds, p.RunKind(ctx, s))
	}
	return rr
}

// RunKind runs the full state machine for one entity kind.
func (p *Pipeline) RunKind(ctx context.Context, s Syncer) *Report {
	log := p.log.With("kind", s.Kind(), "batch_id", p.batchID.String())
	report := &Report{Kind: s.Kind(), State: StateLoaded}

	ctx, span := p.tracer.Start(ctx, "sync."+s.Kind())
	defer span.End()

	ops, failures, err := s.Plan(dbctx.Context{Ctx: ctx})
	if err != nil {
		report.State = StateAborted
		report.fail(s.Kind(), err.Error())
		log.Error("planning failed", "error", err)
		return report
	}
	if len(failures) > 0 {
		report.State = StateAborted
		report.Failed = failures
		log.Error("batch rejected before verification",
			"error", (&BatchError{Kind: s.Kind(), Stage: "classify", Failures: failures}).Error())
		return report
	}
	report.State = StateClassified
	if len(ops) == 0 {
		report.State = StateDone
		return report
	}

	report.State = StateVerifying
	vctx, vspan := p.tracer.Start(ctx, "sync."+s.Kind()+".verify")
	vfails, err := verifyAll(vctx, p.workers, ops)
	vspan.End()
	if err != nil {
		report.State = StateAborted
		report.fail(s.Kind(), err.Error())
		return report
	}
	if len(vfails) > 0 {
		report.State = StateVerifyFailed
		report.Failed = vfails
		log.Error("verification failed, kind aborted",
			"error", (&BatchError{Kind: s.Kind(), Stage: "verify", Failures: vfails}).Error())
		report.State = StateAborted
		return report
	}
	report.State = StateVerifiedOK

	report.State = StateApplying
	actx, aspan := p.tracer.Start(ctx, "sync."+s.Kind()+".apply")
	results, err := applyAll(actx, p.workers, ops, func(opCtx context.Context, op Operation) (Outcome, error) {
		return p.applyOne(opCtx, s.Kind(), op)
	})
	aspan.End()
	if err != nil {
		report.State = StateAborted
		report.fail(s.Kind(), err.Error())
		return report
	}
	for _, res := range results {
		if res.err != nil {
			report.fail(res.key, (&ApplyError{Key: res.key, Err: res.err}).Error())
			continue
		}
		report.record(res.outcome)
	}
	report.State = StateDone
	log.Info("kind reconciled",
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"removed", report.Removed,
		"failed", len(report.Failed))
	return report
}

// applyOne appends a journal entry, runs the operation inside its own
// transaction, then marks the entry done or failed. The journal rows live
// outside the transaction so a rolled-back apply still leaves a trace.
func (p *Pipeline) applyOne(ctx context.Context, kind string, op Operation) (Outcome, error) {
	entry := &types.SyncJournal{
		BatchID:   p.batchID,
		Kind:      kind,
		EntityKey: op.Key(),
		Action:    string(op.Action()),
	}
	if err := p.journal.Append(dbctx.Context{Ctx: ctx}, entry); err != nil {
		return "", err
	}

	var outcome Outcome
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applyErr error
		outcome, applyErr = op.Apply(dbctx.Context{Ctx: ctx, Tx: tx})
		return applyErr
	})
	if err != nil {
		if jerr := p.journal.MarkFailed(dbctx.Context{Ctx: ctx}, entry.ID, err.Error()); jerr != nil {
			p.log.Warn("journal mark-failed failed", "error", jerr)
		}
		return "", err
	}
	if jerr := p.journal.MarkDone(dbctx.Context{Ctx: ctx}, entry.ID); jerr != nil {
		p.log.Warn("journal mark-done failed", "error", jerr)
	}
	return outcome, nil
}
