package services

import (
	"context"
	"strings"
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

type annotationWorld struct {
	svc     AnnotationService
	dbc     dbctx.Context
	project *types.Project
	video   *types.Video
	q       *types.Question
}

func newAnnotationWorld(t *testing.T, prefix string) *annotationWorld {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	svc := NewAnnotationService(
		annotations.NewAnswerRepo(db, log),
		annotations.NewReviewRepo(db, log),
		annotations.NewCustomDisplayRepo(db, log),
		projects.NewRoleRepo(db, log),
		projects.NewProjectRepo(db, log),
		videos.NewVideoRepo(db, log),
		taxonomy.NewQuestionRepo(db, log),
		users.NewUserRepo(db, log),
		log,
	)

	q := testutil.SeedQuestion(t, ctx, tx, prefix+": pick one", []string{"yes", "no"})
	g := testutil.SeedQuestionGroup(t, ctx, tx, prefix+"-group", false, q)
	s := testutil.SeedSchema(t, ctx, tx, prefix+"-schema", g)
	v := testutil.SeedVideo(t, ctx, tx, prefix+"-v1.mp4")
	p := testutil.SeedProject(t, ctx, tx, prefix+"-project", s.ID, v)
	annotator := testutil.SeedUser(t, ctx, tx, prefix+"-annotator", types.UserTypeHuman)
	reviewer := testutil.SeedUser(t, ctx, tx, prefix+"-reviewer", types.UserTypeHuman)
	testutil.SeedRole(t, ctx, tx, annotator.ID, p.ID, types.RoleAnnotator)
	testutil.SeedRole(t, ctx, tx, reviewer.ID, p.ID, types.RoleReviewer)

	return &annotationWorld{
		svc:     svc,
		dbc:     dbctx.Context{Ctx: ctx, Tx: tx},
		project: p,
		video:   v,
		q:       q,
	}
}

func TestAnswerOptionValidation(t *testing.T) {
	w := newAnnotationWorld(t, "ans")

	in := AnswerInput{
		ProjectName:  w.project.Name,
		VideoUID:     w.video.VideoUID,
		QuestionText: w.q.Text,
		UserIDStr:    "ans-annotator",
		Value:        "maybe",
	}
	err := w.svc.ValidateAnswer(w.dbc, in)
	if err == nil || !strings.Contains(err.Error(), "not an option") {
		t.Fatalf("off-option answer should be rejected: %v", err)
	}

	in.Value = "yes"
	if err := w.svc.ValidateAnswer(w.dbc, in); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}
}

func TestAnswerCustomDisplayOverridesOptions(t *testing.T) {
	w := newAnnotationWorld(t, "acd")

	// A custom display narrows the option set for this tuple.
	if err := w.dbc.Tx.Create(&types.CustomDisplay{
		ID:            uuid.New(),
		ProjectID:     w.project.ID,
		VideoID:       w.video.ID,
		QuestionID:    w.q.ID,
		CustomOptions: toJSON([]string{"left", "right"}),
	}).Error; err != nil {
		t.Fatalf("seed display: %v", err)
	}

	in := AnswerInput{
		ProjectName:  w.project.Name,
		VideoUID:     w.video.VideoUID,
		QuestionText: w.q.Text,
		UserIDStr:    "acd-annotator",
		Value:        "yes",
	}
	if err := w.svc.ValidateAnswer(w.dbc, in); err == nil {
		t.Fatal("base option must be invalid once the display overrides")
	}
	in.Value = "left"
	if err := w.svc.ValidateAnswer(w.dbc, in); err != nil {
		t.Fatalf("override option rejected: %v", err)
	}
}

func TestSubmitAnswerIdempotent(t *testing.T) {
	w := newAnnotationWorld(t, "asi")

	in := AnswerInput{
		ProjectName:  w.project.Name,
		VideoUID:     w.video.VideoUID,
		QuestionText: w.q.Text,
		UserIDStr:    "asi-annotator",
		Value:        "yes",
		Notes:        "first pass",
	}
	created, changed, err := w.svc.SubmitAnswer(w.dbc, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !created || !changed {
		t.Fatalf("expected creation, got created=%v changed=%v", created, changed)
	}

	created, changed, err = w.svc.SubmitAnswer(w.dbc, in)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if created || changed {
		t.Fatalf("identical answer must be a no-op, got created=%v changed=%v", created, changed)
	}

	in.Notes = "second pass"
	created, changed, err = w.svc.SubmitAnswer(w.dbc, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if created || !changed {
		t.Fatalf("notes change should update in place, got created=%v changed=%v", created, changed)
	}
	var count int64
	if err := w.dbc.Tx.Model(&types.AnnotatorAnswer{}).
		Where("project_id = ?", w.project.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single answer row, got %d", count)
	}
}

func TestSubmitReview(t *testing.T) {
	w := newAnnotationWorld(t, "arv")

	answer := AnswerInput{
		ProjectName:  w.project.Name,
		VideoUID:     w.video.VideoUID,
		QuestionText: w.q.Text,
		UserIDStr:    "arv-annotator",
		Value:        "no",
	}
	if _, _, err := w.svc.SubmitAnswer(w.dbc, answer); err != nil {
		t.Fatalf("submit answer: %v", err)
	}

	review := ReviewInput{
		ProjectName:  w.project.Name,
		VideoUID:     w.video.VideoUID,
		QuestionText: w.q.Text,
		UserIDStr:    "arv-annotator",
		ReviewerID:   "arv-reviewer",
		Status:       types.ReviewStatusApproved,
		Comment:      "looks right",
	}
	if err := w.svc.SubmitReview(w.dbc, review); err != nil {
		t.Fatalf("submit review: %v", err)
	}

	// The annotator cannot review; the reviewer cannot review a missing answer.
	bad := review
	bad.ReviewerID = "arv-annotator"
	if err := w.svc.SubmitReview(w.dbc, bad); err == nil {
		t.Fatal("annotator must not hold reviewer capability")
	}
	bad = review
	bad.UserIDStr = "arv-reviewer"
	if err := w.svc.SubmitReview(w.dbc, bad); err == nil {
		t.Fatal("review of a nonexistent answer must fail")
	}
	bad = review
	bad.Status = "meh"
	if err := w.svc.SubmitReview(w.dbc, bad); err == nil {
		t.Fatal("unknown status must be rejected")
	}
}
