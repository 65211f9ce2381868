package services

import (
	"context"
	"testing"

	"github.com/yungbote/videolabel-backend/internal/data/repos/annotations"
	"github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/purge"
	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	"github.com/yungbote/videolabel-backend/internal/data/repos/videos"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func TestPurgeVideoCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	videoRepo := videos.NewVideoRepo(db, log)
	userRepo := users.NewUserRepo(db, log)
	projectRepo := projects.NewProjectRepo(db, log)
	purgeSvc := NewPurgeService(purge.NewPurgeRepo(db, log), videoRepo, userRepo, projectRepo, log)
	answerSvc := NewAnnotationService(
		annotations.NewAnswerRepo(db, log),
		annotations.NewReviewRepo(db, log),
		annotations.NewCustomDisplayRepo(db, log),
		projects.NewRoleRepo(db, log),
		projectRepo, videoRepo,
		taxonomy.NewQuestionRepo(db, log),
		userRepo, log,
	)

	q := testutil.SeedQuestion(t, ctx, tx, "prg: pick one", []string{"yes", "no"})
	g := testutil.SeedQuestionGroup(t, ctx, tx, "prg-group", false, q)
	s := testutil.SeedSchema(t, ctx, tx, "prg-schema", g)
	v := testutil.SeedVideo(t, ctx, tx, "prg-v1.mp4")
	p := testutil.SeedProject(t, ctx, tx, "prg-project", s.ID, v)
	u := testutil.SeedUser(t, ctx, tx, "prg-annotator", types.UserTypeHuman)
	testutil.SeedRole(t, ctx, tx, u.ID, p.ID, types.RoleAnnotator)

	if _, _, err := answerSvc.SubmitAnswer(dbc, AnswerInput{
		ProjectName:  "prg-project",
		VideoUID:     "prg-v1.mp4",
		QuestionText: "prg: pick one",
		UserIDStr:    "prg-annotator",
		Value:        "yes",
	}); err != nil {
		t.Fatalf("submit answer: %v", err)
	}

	if err := purgeSvc.PurgeVideo(dbc, "prg-v1.mp4"); err != nil {
		t.Fatalf("purge: %v", err)
	}

	got, err := videoRepo.GetByUID(dbc, "prg-v1.mp4")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatal("video survived the purge")
	}
	var answers int64
	if err := tx.Unscoped().Model(&types.AnnotatorAnswer{}).
		Where("video_id = ?", v.ID).
		Count(&answers).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answers != 0 {
		t.Fatalf("answers survived the purge: %d", answers)
	}
	var memberships int64
	if err := tx.Model(&types.ProjectVideo{}).
		Where("video_id = ?", v.ID).
		Count(&memberships).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if memberships != 0 {
		t.Fatalf("project membership survived the purge: %d", memberships)
	}

	if err := purgeSvc.PurgeVideo(dbc, "prg-v1.mp4"); err == nil {
		t.Fatal("purging an unknown video must fail")
	}
}
