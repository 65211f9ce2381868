package sync

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/services"
)

// Pipeline tests run against the shared test database with committed writes,
// so every test uses its own key prefix. A single worker keeps the apply
// phase deterministic on sqlite.
func newPipelineWorld(t *testing.T) (Deps, *Pipeline) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	deps := BuildDeps(db, log)
	return deps, NewPipeline(db, deps.Journal, 1, log)
}

func kindReport(t *testing.T, rr *RunReport, kind string) *Report {
	t.Helper()
	for _, r := range rr.Kinds {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no report for kind %s in %+v", kind, rr.Kinds)
	return nil
}

func TestVideoReconcileLifecycle(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	docs := []VideoDoc{
		{URL: "https://cdn.example.com/plv-one.mp4"},
		{URL: "https://cdn.example.com/plv-two.mp4"},
	}

	rr := pipe.Run(ctx, BuildSyncers(&DocumentSet{Videos: docs}, deps))
	if !rr.Clean() {
		t.Fatalf("first run not clean: %+v", rr.Kinds)
	}
	rep := kindReport(t, rr, KindVideos)
	if rep.Created != 2 || rep.Updated != 0 || rep.Skipped != 0 {
		t.Fatalf("first run: %s", rep)
	}
	entries, err := deps.Journal.ListByBatch(dbc, pipe.BatchID())
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal entries = %d", len(entries))
	}
	for _, e := range entries {
		if e.Status != types.JournalStatusDone {
			t.Fatalf("entry %s status = %s", e.EntityKey, e.Status)
		}
		if e.Action != string(ActionAdd) {
			t.Fatalf("entry %s action = %s", e.EntityKey, e.Action)
		}
	}

	// Same desired state again: everything already converged.
	_, pipe2 := newPipelineWorld(t)
	rr = pipe2.Run(ctx, BuildSyncers(&DocumentSet{Videos: docs}, deps))
	rep = kindReport(t, rr, KindVideos)
	if rep.Created != 0 || rep.Updated != 0 || rep.Skipped != 2 {
		t.Fatalf("idempotent run: %s", rep)
	}

	// A moved url updates; is_active=false archives and counts as removed.
	inactive := false
	docs = []VideoDoc{
		{URL: "https://mirror.example.com/plv-one.mp4"},
		{URL: "https://cdn.example.com/plv-two.mp4", IsActive: &inactive},
	}
	_, pipe3 := newPipelineWorld(t)
	rr = pipe3.Run(ctx, BuildSyncers(&DocumentSet{Videos: docs}, deps))
	rep = kindReport(t, rr, KindVideos)
	if rep.Updated != 1 || rep.Removed != 1 {
		t.Fatalf("update run: %s", rep)
	}
	one, err := deps.Videos.GetByUID(dbc, "plv-one.mp4")
	if err != nil || one == nil {
		t.Fatalf("lookup one: %v (%v)", one, err)
	}
	if one.URL != "https://mirror.example.com/plv-one.mp4" {
		t.Fatalf("url = %q", one.URL)
	}
	two, err := deps.Videos.GetByUID(dbc, "plv-two.mp4")
	if err != nil || two == nil {
		t.Fatalf("lookup two: %v (%v)", two, err)
	}
	if !two.IsArchived {
		t.Fatal("plv-two.mp4 should be archived")
	}
}

func TestDuplicateKeysAbortBeforeAnyWrite(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	docs := []VideoDoc{
		{URL: "https://cdn.example.com/pld-dup.mp4"},
		{URL: "https://other.example.com/pld-dup.mp4"},
	}
	rep := pipe.RunKind(ctx, NewVideoSyncer(docs, deps.VideoSvc, deps.Videos, deps.Log))
	if rep.State != StateAborted {
		t.Fatalf("state = %s", rep.State)
	}
	if len(rep.Failed) != 1 || !strings.Contains(rep.Failed[0].Reason, "duplicate natural key") {
		t.Fatalf("failed = %+v", rep.Failed)
	}
	v, err := deps.Videos.GetByUID(dbc, "pld-dup.mp4")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if v != nil {
		t.Fatal("aborted kind must not write")
	}
}

// One invariant violation in the batch aborts the whole kind: the valid
// sibling update must not land either.
func TestVerifyFailureAbortsWholeKind(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	questions := func(texts ...string) []services.QuestionInput {
		out := make([]services.QuestionInput, 0, len(texts))
		for _, text := range texts {
			out = append(out, services.QuestionInput{
				Text:    text,
				QType:   types.QuestionTypeSingle,
				Options: []string{"yes", "no"},
			})
		}
		return out
	}
	if _, err := deps.GroupSvc.Create(dbc, services.QuestionGroupInput{
		Title:       "aon-g1",
		Description: "first",
		Questions:   questions("aon: q A", "aon: q B"),
	}); err != nil {
		t.Fatalf("seed g1: %v", err)
	}
	if _, err := deps.GroupSvc.Create(dbc, services.QuestionGroupInput{
		Title:     "aon-g2",
		Questions: questions("aon: q C", "aon: q D"),
	}); err != nil {
		t.Fatalf("seed g2: %v", err)
	}

	docQuestions := func(texts ...string) []QuestionDoc {
		out := make([]QuestionDoc, 0, len(texts))
		for _, text := range texts {
			out = append(out, QuestionDoc{Text: text, QType: types.QuestionTypeSingle, Options: []string{"yes", "no"}})
		}
		return out
	}
	docs := []QuestionGroupDoc{
		{Title: "aon-g1", Description: "second", Questions: docQuestions("aon: q A", "aon: q B")},
		// Swapping D for E violates member-set immutability.
		{Title: "aon-g2", Questions: docQuestions("aon: q C", "aon: q E")},
	}

	rep := pipe.RunKind(ctx, NewQuestionGroupSyncer(docs, deps.GroupSvc, deps.Groups, deps.Log))
	if rep.State != StateAborted {
		t.Fatalf("state = %s", rep.State)
	}
	if len(rep.Failed) != 1 || rep.Failed[0].Key != "aon-g2" {
		t.Fatalf("failed = %+v", rep.Failed)
	}
	if rep.Created != 0 || rep.Updated != 0 {
		t.Fatalf("aborted kind recorded outcomes: %s", rep)
	}

	g1, err := deps.Groups.GetByTitle(dbc, "aon-g1")
	if err != nil || g1 == nil {
		t.Fatalf("reload g1: %v (%v)", g1, err)
	}
	if g1.Description != "first" {
		t.Fatalf("valid sibling mutated in an aborted batch: %q", g1.Description)
	}
}

func TestAbortedKindDoesNotStopLaterKinds(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	ds := &DocumentSet{
		Videos: []VideoDoc{
			{URL: "https://cdn.example.com/plc-dup.mp4"},
			{URL: "https://other.example.com/plc-dup.mp4"},
		},
		Users: []UserDoc{
			{UserID: "plc-user", Email: "plc-user@example.com", UserType: types.UserTypeHuman},
		},
	}
	rr := pipe.Run(ctx, BuildSyncers(ds, deps))
	if rr.Clean() {
		t.Fatal("run with an aborted kind must not be clean")
	}
	if rep := kindReport(t, rr, KindVideos); rep.State != StateAborted {
		t.Fatalf("videos state = %s", rep.State)
	}
	if rep := kindReport(t, rr, KindUsers); rep.State != StateDone || rep.Created != 1 {
		t.Fatalf("users report = %s", rep)
	}
	u, err := deps.Users.GetByIDStr(dbc, "plc-user")
	if err != nil || u == nil {
		t.Fatalf("user lookup: %v (%v)", u, err)
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds := &DocumentSet{Videos: []VideoDoc{{URL: "https://cdn.example.com/plx-one.mp4"}}}
	rr := pipe.Run(ctx, BuildSyncers(ds, deps))
	if rr.Clean() {
		t.Fatal("cancelled run must not be clean")
	}
	if rep := kindReport(t, rr, KindVideos); rep.State != StateAborted {
		t.Fatalf("state = %s", rep.State)
	}
	v, err := deps.Videos.GetByUID(dbctx.Context{Ctx: context.Background()}, "plx-one.mp4")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if v != nil {
		t.Fatal("cancelled run must not write")
	}
}
