package services

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func newQuestionGroupWorld(t *testing.T) (QuestionGroupService, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	questionRepo := taxonomy.NewQuestionRepo(db, log)
	svc := NewQuestionGroupService(
		taxonomy.NewQuestionGroupRepo(db, log),
		questionRepo,
		NewQuestionService(questionRepo, log),
		log,
	)
	return svc, dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func singleQuestion(text string, options ...string) QuestionInput {
	if len(options) == 0 {
		options = []string{"yes", "no"}
	}
	return QuestionInput{Text: text, QType: types.QuestionTypeSingle, Options: options}
}

func TestQuestionGroupMemberSetImmutable(t *testing.T) {
	svc, dbc := newQuestionGroupWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	qa := testutil.SeedQuestion(t, ctx, tx, "qgs: question A", []string{"yes", "no"})
	qb := testutil.SeedQuestion(t, ctx, tx, "qgs: question B", []string{"yes", "no"})
	group := testutil.SeedQuestionGroup(t, ctx, tx, "qgs-group", false, qa, qb)

	err := svc.ValidateUpdate(dbc, group, QuestionGroupInput{
		Title: "qgs-group",
		Questions: []QuestionInput{
			singleQuestion("qgs: question A"),
			singleQuestion("qgs: question C"),
		},
	})
	if err == nil {
		t.Fatal("expected member-set violation")
	}
	if !strings.Contains(err.Error(), "qgs: question B") {
		t.Fatalf("error should name the missing question: %v", err)
	}
	if !strings.Contains(err.Error(), "qgs: question C") {
		t.Fatalf("error should name the extra question: %v", err)
	}

	// The same set in a different order is legal.
	if err := svc.ValidateUpdate(dbc, group, QuestionGroupInput{
		Title: "qgs-group",
		Questions: []QuestionInput{
			singleQuestion("qgs: question B"),
			singleQuestion("qgs: question A"),
		},
	}); err != nil {
		t.Fatalf("reorder should be legal: %v", err)
	}
}

func TestQuestionGroupUpdateReorders(t *testing.T) {
	svc, dbc := newQuestionGroupWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	qa := testutil.SeedQuestion(t, ctx, tx, "qgr: question A", []string{"yes", "no"})
	qb := testutil.SeedQuestion(t, ctx, tx, "qgr: question B", []string{"yes", "no"})
	group := testutil.SeedQuestionGroup(t, ctx, tx, "qgr-group", false, qa, qb)

	changed, err := svc.Update(dbc, group, QuestionGroupInput{
		Title: "qgr-group",
		Questions: []QuestionInput{
			singleQuestion("qgr: question B"),
			singleQuestion("qgr: question A"),
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changed {
		t.Fatal("reorder should report a change")
	}
	texts, err := svc.MemberTexts(dbc, group.ID)
	if err != nil {
		t.Fatalf("member texts: %v", err)
	}
	if len(texts) != 2 || texts[0] != "qgr: question B" || texts[1] != "qgr: question A" {
		t.Fatalf("order = %v", texts)
	}

	// Submitting the stored order again changes nothing.
	changed, err = svc.Update(dbc, group, QuestionGroupInput{
		Title: "qgr-group",
		Questions: []QuestionInput{
			singleQuestion("qgr: question B"),
			singleQuestion("qgr: question A"),
		},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if changed {
		t.Fatal("identical desired state must be a no-op")
	}
}

func TestQuestionGroupCreateReusesExistingQuestions(t *testing.T) {
	svc, dbc := newQuestionGroupWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	testutil.SeedQuestion(t, ctx, tx, "qgc: existing question", []string{"yes", "no"})

	group, err := svc.Create(dbc, QuestionGroupInput{
		Title: "qgc-group",
		Questions: []QuestionInput{
			singleQuestion("qgc: existing question"),
			singleQuestion("qgc: brand new question"),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	texts, err := svc.MemberTexts(dbc, group.ID)
	if err != nil {
		t.Fatalf("member texts: %v", err)
	}
	if len(texts) != 2 || texts[0] != "qgc: existing question" || texts[1] != "qgc: brand new question" {
		t.Fatalf("order = %v", texts)
	}

	// The pre-existing question row is shared, not duplicated.
	var count int64
	if err := tx.Model(&types.Question{}).
		Where("text = ?", "qgc: existing question").
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("question duplicated: %d rows", count)
	}
}

// Archiving a group retires its questions with it, unless another active
// group still references them.
func TestQuestionGroupArchiveCascadesToUnsharedQuestions(t *testing.T) {
	svc, dbc := newQuestionGroupWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	sharedQ := testutil.SeedQuestion(t, ctx, tx, "qga: shared question", []string{"yes", "no"})
	ownQ := testutil.SeedQuestion(t, ctx, tx, "qga: own question", []string{"yes", "no"})
	group := testutil.SeedQuestionGroup(t, ctx, tx, "qga-group", true, sharedQ, ownQ)
	testutil.SeedQuestionGroup(t, ctx, tx, "qga-other", true, sharedQ)

	changed, err := svc.Update(dbc, group, QuestionGroupInput{
		Title:    "qga-group",
		Archived: true,
	})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !changed {
		t.Fatal("archiving should report a change")
	}

	var own, shared types.Question
	if err := tx.Where("id = ?", ownQ.ID).First(&own).Error; err != nil {
		t.Fatalf("reload own question: %v", err)
	}
	if !own.IsArchived {
		t.Fatal("unshared question should be archived with its group")
	}
	if err := tx.Where("id = ?", sharedQ.ID).First(&shared).Error; err != nil {
		t.Fatalf("reload shared question: %v", err)
	}
	if shared.IsArchived {
		t.Fatal("question held by another active group must stay active")
	}
}

func TestQuestionGroupValidateNewRejectsDuplicates(t *testing.T) {
	svc, dbc := newQuestionGroupWorld(t)

	err := svc.ValidateNew(dbc, QuestionGroupInput{
		Title: "qgd-group",
		Questions: []QuestionInput{
			singleQuestion("qgd: twice"),
			singleQuestion("qgd: twice"),
		},
	})
	if err == nil {
		t.Fatal("expected duplicate member rejection")
	}
}
