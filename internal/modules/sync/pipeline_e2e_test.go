package sync

import (
	"context"
	"testing"

	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func e2eDocumentSet() *DocumentSet {
	return &DocumentSet{
		Videos: []VideoDoc{
			{URL: "https://cdn.example.com/e2e-v1.mp4"},
		},
		Users: []UserDoc{
			{UserID: "e2e-ann", Email: "e2e-ann@example.com", UserType: types.UserTypeHuman},
			{UserID: "e2e-rev", Email: "e2e-rev@example.com", UserType: types.UserTypeHuman},
		},
		QuestionGroups: []QuestionGroupDoc{
			{
				Title: "e2e-group",
				Questions: []QuestionDoc{
					{Text: "e2e: action visible?", QType: types.QuestionTypeSingle, Options: []string{"yes", "no"}},
				},
			},
		},
		Schemas: []SchemaDoc{
			{SchemaName: "e2e-schema", QuestionGroupNames: []string{"e2e-group"}},
		},
		Projects: []ProjectDoc{
			{ProjectName: "e2e-project", SchemaName: "e2e-schema", Videos: []ProjectVideoRef{{VideoUID: "e2e-v1.mp4"}}},
		},
		Assignments: []AssignmentDoc{
			{UserName: "e2e-ann", ProjectName: "e2e-project", Role: types.RoleAnnotator},
			{UserName: "e2e-rev", ProjectName: "e2e-project", Role: types.RoleReviewer},
		},
		Annotations: []AnnotationDoc{
			{
				VideoUID:           "e2e-v1.mp4",
				ProjectName:        "e2e-project",
				UserName:           "e2e-ann",
				QuestionGroupTitle: "e2e-group",
				Answers:            map[string]string{"e2e: action visible?": "yes"},
				ConfidenceScores:   map[string]float64{"e2e: action visible?": 0.9},
			},
			{
				VideoUID:           "e2e-v1.mp4",
				ProjectName:        "e2e-project",
				UserName:           "e2e-rev",
				QuestionGroupTitle: "e2e-group",
				Answers:            map[string]string{"e2e: action visible?": "no"},
				IsGroundTruth:      true,
			},
		},
	}
}

// A full desired-state set, from empty database to converged, then run again
// to prove convergence is a fixed point.
func TestFullBatchConvergesAndIsIdempotent(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	rr := pipe.Run(ctx, BuildSyncers(e2eDocumentSet(), deps))
	if !rr.Clean() {
		t.Fatalf("first run not clean: %+v", rr.Kinds)
	}
	for _, kind := range []string{KindVideos, KindQuestionGroups, KindSchemas, KindProjects} {
		if rep := kindReport(t, rr, kind); rep.Created != 1 {
			t.Fatalf("%s: %s", kind, rep)
		}
	}
	if rep := kindReport(t, rr, KindUsers); rep.Created != 2 {
		t.Fatalf("users: %s", rep)
	}
	if rep := kindReport(t, rr, KindAssignments); rep.Created != 2 {
		t.Fatalf("assignments: %s", rep)
	}
	if rep := kindReport(t, rr, KindAnnotations); rep.Created != 2 {
		t.Fatalf("annotations: %s", rep)
	}

	// Completion landed inside the same run: one question on one video means
	// a single submission is 100 percent for each side.
	p, err := deps.Projects.GetByName(dbc, "e2e-project")
	if err != nil || p == nil {
		t.Fatalf("project: %v (%v)", p, err)
	}
	ann, err := deps.Users.GetByIDStr(dbc, "e2e-ann")
	if err != nil || ann == nil {
		t.Fatalf("annotator: %v (%v)", ann, err)
	}
	rev, err := deps.Users.GetByIDStr(dbc, "e2e-rev")
	if err != nil || rev == nil {
		t.Fatalf("reviewer: %v (%v)", rev, err)
	}
	for _, u := range []*types.User{ann, rev} {
		role, err := deps.Roles.ActiveRole(dbc, u.ID, p.ID)
		if err != nil || role == nil {
			t.Fatalf("role of %s: %v (%v)", u.UserIDStr, role, err)
		}
		if role.CompletionPercent != 100 || role.CompletedAt == nil {
			t.Fatalf("%s completion = %v (completed_at %v)", u.UserIDStr, role.CompletionPercent, role.CompletedAt)
		}
	}

	// Second pass over the identical desired state: no writes anywhere.
	_, pipe2 := newPipelineWorld(t)
	rr = pipe2.Run(ctx, BuildSyncers(e2eDocumentSet(), deps))
	if !rr.Clean() {
		t.Fatalf("second run not clean: %+v", rr.Kinds)
	}
	for _, rep := range rr.Kinds {
		if rep.Created != 0 || rep.Updated != 0 || rep.Removed != 0 {
			t.Fatalf("second run mutated %s: %s", rep.Kind, rep)
		}
	}
}

// Deactivating an assignment via is_active=false retires the role row.
func TestAssignmentDeactivation(t *testing.T) {
	deps, pipe := newPipelineWorld(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	ds := e2eDocumentSet()
	rename := func(s string) string { return "dea" + s[3:] }
	ds.Videos[0].URL = "https://cdn.example.com/dea-v1.mp4"
	for i := range ds.Users {
		ds.Users[i].UserID = rename(ds.Users[i].UserID)
		ds.Users[i].Email = rename(ds.Users[i].Email)
	}
	ds.QuestionGroups[0].Title = "dea-group"
	ds.QuestionGroups[0].Questions[0].Text = "dea: action visible?"
	ds.Schemas[0].SchemaName = "dea-schema"
	ds.Schemas[0].QuestionGroupNames = []string{"dea-group"}
	ds.Projects[0].ProjectName = "dea-project"
	ds.Projects[0].SchemaName = "dea-schema"
	ds.Projects[0].Videos = []ProjectVideoRef{{VideoUID: "dea-v1.mp4"}}
	for i := range ds.Assignments {
		ds.Assignments[i].UserName = rename(ds.Assignments[i].UserName)
		ds.Assignments[i].ProjectName = "dea-project"
	}
	ds.Annotations = nil

	rr := pipe.Run(ctx, BuildSyncers(ds, deps))
	if !rr.Clean() {
		t.Fatalf("setup run not clean: %+v", rr.Kinds)
	}

	inactive := false
	_, pipe2 := newPipelineWorld(t)
	rep := pipe2.RunKind(ctx, NewAssignmentSyncer([]AssignmentDoc{
		{UserName: "dea-ann", ProjectName: "dea-project", Role: types.RoleAnnotator, IsActive: &inactive},
	}, deps.RoleSvc, deps.Users, deps.Projects, deps.Roles, deps.Log))
	if rep.State != StateDone || rep.Removed != 1 {
		t.Fatalf("deactivation: %s", rep)
	}

	p, err := deps.Projects.GetByName(dbc, "dea-project")
	if err != nil || p == nil {
		t.Fatalf("project: %v (%v)", p, err)
	}
	u, err := deps.Users.GetByIDStr(dbc, "dea-ann")
	if err != nil || u == nil {
		t.Fatalf("user: %v (%v)", u, err)
	}
	role, err := deps.Roles.ActiveRole(dbc, u.ID, p.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if role != nil {
		t.Fatalf("assignment still active: %+v", role)
	}
}
