package services

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/videolabel-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func newSchemaWorld(t *testing.T) (SchemaService, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	svc := NewSchemaService(taxonomy.NewSchemaRepo(db, log), taxonomy.NewQuestionGroupRepo(db, log), log)
	return svc, dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func TestSchemaReusabilityExclusion(t *testing.T) {
	svc, dbc := newSchemaWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	q := testutil.SeedQuestion(t, ctx, tx, "sch: a question", []string{"yes", "no"})
	exclusive := testutil.SeedQuestionGroup(t, ctx, tx, "sch-exclusive", false, q)
	shared := testutil.SeedQuestionGroup(t, ctx, tx, "sch-shared", true, q)
	owner := testutil.SeedSchema(t, ctx, tx, "sch-owner", exclusive, shared)

	// A second schema may reuse the reusable group but not the exclusive one.
	if err := svc.ValidateNew(dbc, SchemaInput{
		Name:        "sch-second",
		GroupTitles: []string{"sch-shared"},
	}); err != nil {
		t.Fatalf("reusable group should be attachable: %v", err)
	}

	err := svc.ValidateNew(dbc, SchemaInput{
		Name:        "sch-second",
		GroupTitles: []string{"sch-exclusive"},
	})
	if err == nil {
		t.Fatal("expected reusability violation")
	}
	if !strings.Contains(err.Error(), "sch-owner") {
		t.Fatalf("violation should name the owning schema: %v", err)
	}
	_ = owner
}

func TestSchemaValidateUpdateGroupSetImmutable(t *testing.T) {
	svc, dbc := newSchemaWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	q := testutil.SeedQuestion(t, ctx, tx, "schu: a question", []string{"yes", "no"})
	g1 := testutil.SeedQuestionGroup(t, ctx, tx, "schu-g1", true, q)
	g2 := testutil.SeedQuestionGroup(t, ctx, tx, "schu-g2", true, q)
	schema := testutil.SeedSchema(t, ctx, tx, "schu-schema", g1, g2)

	err := svc.ValidateUpdate(dbc, schema, SchemaInput{
		Name:        "schu-schema",
		GroupTitles: []string{"schu-g1", "schu-g3"},
	})
	if err == nil {
		t.Fatal("expected member-set violation")
	}
	if !strings.Contains(err.Error(), "schu-g2") || !strings.Contains(err.Error(), "schu-g3") {
		t.Fatalf("error should name the symmetric difference: %v", err)
	}

	// Reorder is legal and applied.
	if err := svc.ValidateUpdate(dbc, schema, SchemaInput{
		Name:        "schu-schema",
		GroupTitles: []string{"schu-g2", "schu-g1"},
	}); err != nil {
		t.Fatalf("reorder should validate: %v", err)
	}
	changed, err := svc.Update(dbc, schema, SchemaInput{
		Name:        "schu-schema",
		GroupTitles: []string{"schu-g2", "schu-g1"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changed {
		t.Fatal("reorder should report a change")
	}
	titles, err := svc.MemberTitles(dbc, schema.ID)
	if err != nil {
		t.Fatalf("member titles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "schu-g2" || titles[1] != "schu-g1" {
		t.Fatalf("order = %v", titles)
	}
}

func TestSchemaCreateAttachesGroupsInOrder(t *testing.T) {
	svc, dbc := newSchemaWorld(t)
	ctx, tx := dbc.Ctx, dbc.Tx

	q := testutil.SeedQuestion(t, ctx, tx, "schc: a question", []string{"yes", "no"})
	g1 := testutil.SeedQuestionGroup(t, ctx, tx, "schc-g1", true, q)
	g2 := testutil.SeedQuestionGroup(t, ctx, tx, "schc-g2", true, q)
	_, _ = g1, g2

	row, err := svc.Create(dbc, SchemaInput{
		Name:        "schc-schema",
		GroupTitles: []string{"schc-g2", "schc-g1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	titles, err := svc.MemberTitles(dbc, row.ID)
	if err != nil {
		t.Fatalf("member titles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "schc-g2" || titles[1] != "schc-g1" {
		t.Fatalf("order = %v", titles)
	}
}
