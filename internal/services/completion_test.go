package services

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	"github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

type completionWorld struct {
	dbc       dbctx.Context
	roles     projects.RoleRepo
	svc       CompletionService
	truthSvc  GroundTruthService
	answerSvc AnnotationService

	project   *types.Project
	questions []*types.Question
	vids      []*types.Video
	reviewer  *types.User
	admin     *types.User
	annotator *types.User
}

// Two active questions across three active videos: six expected submissions.
func newCompletionWorld(t *testing.T, prefix string) *completionWorld {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	videoRepo := videos.NewVideoRepo(db, log)
	userRepo := users.NewUserRepo(db, log)
	questionRepo := taxonomy.NewQuestionRepo(db, log)
	projectRepo := projects.NewProjectRepo(db, log)
	roleRepo := projects.NewRoleRepo(db, log)
	answerRepo := annotations.NewAnswerRepo(db, log)
	truthRepo := annotations.NewGroundTruthRepo(db, log)

	w := &completionWorld{
		dbc:   dbctx.Context{Ctx: ctx, Tx: tx},
		roles: roleRepo,
		svc:   NewCompletionService(projectRepo, roleRepo, answerRepo, truthRepo, log),
		truthSvc: NewGroundTruthService(
			truthRepo, roleRepo, projectRepo, videoRepo, questionRepo, userRepo, log),
		answerSvc: NewAnnotationService(
			answerRepo,
			annotations.NewReviewRepo(db, log),
			annotations.NewCustomDisplayRepo(db, log),
			roleRepo, projectRepo, videoRepo, questionRepo, userRepo, log),
	}

	q1 := testutil.SeedQuestion(t, ctx, tx, prefix+" q1", []string{"yes", "no"})
	q2 := testutil.SeedQuestion(t, ctx, tx, prefix+" q2", []string{"yes", "no"})
	w.questions = []*types.Question{q1, q2}
	for _, uid := range []string{prefix + "-a.mp4", prefix + "-b.mp4", prefix + "-c.mp4"} {
		w.vids = append(w.vids, testutil.SeedVideo(t, ctx, tx, uid))
	}
	g := testutil.SeedQuestionGroup(t, ctx, tx, prefix+"-group", false, q1, q2)
	s := testutil.SeedSchema(t, ctx, tx, prefix+"-schema", g)
	w.project = testutil.SeedProject(t, ctx, tx, prefix+"-project", s.ID, w.vids...)

	w.reviewer = testutil.SeedUser(t, ctx, tx, prefix+"-reviewer", types.UserTypeHuman)
	w.admin = testutil.SeedUser(t, ctx, tx, prefix+"-admin", types.UserTypeAdmin)
	w.annotator = testutil.SeedUser(t, ctx, tx, prefix+"-annotator", types.UserTypeHuman)
	testutil.SeedRole(t, ctx, tx, w.reviewer.ID, w.project.ID, types.RoleReviewer)
	testutil.SeedRole(t, ctx, tx, w.admin.ID, w.project.ID, types.RoleAdmin)
	testutil.SeedRole(t, ctx, tx, w.annotator.ID, w.project.ID, types.RoleAnnotator)
	return w
}

func (w *completionWorld) submitAllTruth(t *testing.T) {
	t.Helper()
	for _, q := range w.questions {
		for _, v := range w.vids {
			_, _, err := w.truthSvc.Submit(w.dbc, GroundTruthInput{
				ProjectName:  w.project.Name,
				VideoUID:     v.VideoUID,
				QuestionText: q.Text,
				ReviewerID:   w.reviewer.UserIDStr,
				Value:        "yes",
			})
			if err != nil {
				t.Fatalf("ground truth submit %s/%s: %v", v.VideoUID, q.Text, err)
			}
		}
	}
}

func TestReviewerCompletionReachesAllReviewerRoles(t *testing.T) {
	w := newCompletionWorld(t, "cmpl-rev")
	w.submitAllTruth(t)

	percent, err := w.svc.RecalcReviewers(w.dbc, w.project.ID)
	if err != nil {
		t.Fatalf("recalc reviewers: %v", err)
	}
	if percent != 100 {
		t.Fatalf("expected 100%% after 6/6 submissions, got %v", percent)
	}

	for _, u := range []*types.User{w.reviewer, w.admin} {
		role, err := w.roles.ActiveRole(w.dbc, u.ID, w.project.ID)
		if err != nil {
			t.Fatalf("active role %s: %v", u.UserIDStr, err)
		}
		if role.CompletionPercent != 100 {
			t.Fatalf("%s percent = %v, want 100", u.UserIDStr, role.CompletionPercent)
		}
		if role.CompletedAt == nil {
			t.Fatalf("%s completed_at not stamped", u.UserIDStr)
		}
	}

	// The annotator assignment is untouched by reviewer accounting.
	role, err := w.roles.ActiveRole(w.dbc, w.annotator.ID, w.project.ID)
	if err != nil {
		t.Fatalf("annotator role: %v", err)
	}
	if role.CompletionPercent != 0 || role.CompletedAt != nil {
		t.Fatalf("annotator assignment changed: percent=%v completed=%v",
			role.CompletionPercent, role.CompletedAt)
	}
}

func TestCompletionRecalculatesAfterQuestionArchive(t *testing.T) {
	w := newCompletionWorld(t, "cmpl-arch")
	w.submitAllTruth(t)
	if _, err := w.svc.RecalcReviewers(w.dbc, w.project.ID); err != nil {
		t.Fatalf("recalc reviewers: %v", err)
	}
	before, err := w.roles.ActiveRole(w.dbc, w.reviewer.ID, w.project.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if before.CompletedAt == nil {
		t.Fatal("precondition: reviewer not at 100")
	}

	// Archiving one question shrinks the denominator to 1x3; the three
	// surviving submissions still cover it, so the percent holds at 100
	// and the original stamp survives the recalculation.
	if err := w.dbc.Tx.Model(&types.Question{}).
		Where("id = ?", w.questions[0].ID).
		Update("is_archived", true).Error; err != nil {
		t.Fatalf("archive question: %v", err)
	}
	percent, err := w.svc.RecalcReviewers(w.dbc, w.project.ID)
	if err != nil {
		t.Fatalf("recalc after archive: %v", err)
	}
	if percent != 100 {
		t.Fatalf("expected 100%% against shrunk denominator, got %v", percent)
	}
	after, err := w.roles.ActiveRole(w.dbc, w.reviewer.ID, w.project.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(*before.CompletedAt) {
		t.Fatalf("completed_at must be preserved, before=%v after=%v",
			before.CompletedAt, after.CompletedAt)
	}
}

func TestAnnotatorCompletionPartialThenDrop(t *testing.T) {
	w := newCompletionWorld(t, "cmpl-ann")

	submit := func(v *types.Video, q *types.Question) {
		t.Helper()
		_, _, err := w.answerSvc.SubmitAnswer(w.dbc, AnswerInput{
			ProjectName:  w.project.Name,
			VideoUID:     v.VideoUID,
			QuestionText: q.Text,
			UserIDStr:    w.annotator.UserIDStr,
			Value:        "yes",
		})
		if err != nil {
			t.Fatalf("submit answer %s/%s: %v", v.VideoUID, q.Text, err)
		}
	}

	// One of six tuples answered.
	submit(w.vids[0], w.questions[0])
	percent, err := w.svc.RecalcAnnotator(w.dbc, w.project.ID, w.annotator.ID)
	if err != nil {
		t.Fatalf("recalc annotator: %v", err)
	}
	if math.Abs(percent-100.0/6) > 0.001 {
		t.Fatalf("expected 1/6 of 100, got %v", percent)
	}

	// All six answered: 100 with a stamp.
	for _, q := range w.questions {
		for _, v := range w.vids {
			submit(v, q)
		}
	}
	percent, err = w.svc.RecalcAnnotator(w.dbc, w.project.ID, w.annotator.ID)
	if err != nil {
		t.Fatalf("recalc annotator: %v", err)
	}
	if percent != 100 {
		t.Fatalf("expected 100, got %v", percent)
	}
	role, err := w.roles.ActiveRole(w.dbc, w.annotator.ID, w.project.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if role.CompletedAt == nil {
		t.Fatal("completed_at not stamped at 100")
	}

	// A fourth video grows the denominator to 8; the percent drops and the
	// stamp is cleared.
	v4 := testutil.SeedVideo(t, w.dbc.Ctx, w.dbc.Tx, "cmpl-ann-d.mp4")
	if err := w.dbc.Tx.Create(&types.ProjectVideo{
		ID:        uuid.New(),
		ProjectID: w.project.ID,
		VideoID:   v4.ID,
	}).Error; err != nil {
		t.Fatalf("attach video: %v", err)
	}
	percent, err = w.svc.RecalcAnnotator(w.dbc, w.project.ID, w.annotator.ID)
	if err != nil {
		t.Fatalf("recalc annotator: %v", err)
	}
	if percent != 75 {
		t.Fatalf("expected 6/8 of 100, got %v", percent)
	}
	role, err = w.roles.ActiveRole(w.dbc, w.annotator.ID, w.project.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if role.CompletedAt != nil {
		t.Fatal("completed_at must be cleared when percent drops below 100")
	}
}
