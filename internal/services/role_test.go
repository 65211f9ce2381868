package services

import (
	"context"
	"testing"

	"github.com/yungbote/videolabel-backend/internal/data/repos/projects"
	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func newRoleWorld(t *testing.T) (RoleService, projects.RoleRepo, dbctx.Context, *types.User, *types.Project) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	roleRepo := projects.NewRoleRepo(db, log)
	svc := NewRoleService(roleRepo, users.NewUserRepo(db, log), projects.NewProjectRepo(db, log), log)

	q := testutil.SeedQuestion(t, ctx, tx, "role: anything to note?", nil)
	g := testutil.SeedQuestionGroup(t, ctx, tx, "role-group", false, q)
	s := testutil.SeedSchema(t, ctx, tx, "role-schema", g)
	v := testutil.SeedVideo(t, ctx, tx, "role-v1.mp4")
	p := testutil.SeedProject(t, ctx, tx, "role-project", s.ID, v)
	u := testutil.SeedUser(t, ctx, tx, "role-user", types.UserTypeHuman)
	return svc, roleRepo, dbctx.Context{Ctx: ctx, Tx: tx}, u, p
}

func TestRoleEnsureReassignmentArchivesOldRow(t *testing.T) {
	svc, roleRepo, dbc, u, p := newRoleWorld(t)

	in := RoleInput{UserIDStr: "role-user", ProjectName: "role-project", Role: types.RoleAnnotator}
	created, changed, err := svc.Ensure(dbc, in)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !created || !changed {
		t.Fatalf("first ensure should create, got created=%v changed=%v", created, changed)
	}

	// Same role again: untouched.
	created, changed, err = svc.Ensure(dbc, in)
	if err != nil {
		t.Fatalf("ensure same: %v", err)
	}
	if created || changed {
		t.Fatalf("same-role ensure must be a no-op, got created=%v changed=%v", created, changed)
	}

	// Reassignment: old row archived, new active row with the new role.
	in.Role = types.RoleReviewer
	created, changed, err = svc.Ensure(dbc, in)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if created || !changed {
		t.Fatalf("reassignment should update, got created=%v changed=%v", created, changed)
	}

	active, err := roleRepo.ActiveRole(dbc, u.ID, p.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if active == nil || active.Role != types.RoleReviewer {
		t.Fatalf("active role = %+v, want reviewer", active)
	}
	var archived int64
	if err := dbc.Tx.Model(&types.RoleAssignment{}).
		Where("user_id = ? AND project_id = ? AND is_archived = ?", u.ID, p.ID, true).
		Count(&archived).Error; err != nil {
		t.Fatalf("count archived: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected one archived row, got %d", archived)
	}
}

func TestRoleValidateLegality(t *testing.T) {
	svc, _, dbc, _, _ := newRoleWorld(t)
	testutil.SeedUser(t, dbc.Ctx, dbc.Tx, "role-global-admin", types.UserTypeAdmin)

	cases := []struct {
		name    string
		in      RoleInput
		wantErr bool
	}{
		{"human annotator ok", RoleInput{"role-user", "role-project", types.RoleAnnotator}, false},
		{"human cannot be admin", RoleInput{"role-user", "role-project", types.RoleAdmin}, true},
		{"human cannot be model", RoleInput{"role-user", "role-project", types.RoleModel}, true},
		{"admin holds only admin", RoleInput{"role-global-admin", "role-project", types.RoleReviewer}, true},
		{"admin role ok for admin", RoleInput{"role-global-admin", "role-project", types.RoleAdmin}, false},
		{"unknown role", RoleInput{"role-user", "role-project", "owner"}, true},
		{"unknown user", RoleInput{"role-nobody", "role-project", types.RoleAnnotator}, true},
		{"unknown project", RoleInput{"role-user", "role-nowhere", types.RoleAnnotator}, true},
	}
	for _, tc := range cases {
		err := svc.Validate(dbc, tc.in)
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestRoleArchive(t *testing.T) {
	svc, roleRepo, dbc, u, p := newRoleWorld(t)
	in := RoleInput{UserIDStr: "role-user", ProjectName: "role-project", Role: types.RoleAnnotator}
	if _, _, err := svc.Ensure(dbc, in); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	changed, err := svc.Archive(dbc, in)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !changed {
		t.Fatal("archive of an active assignment should report a change")
	}
	active, err := roleRepo.ActiveRole(dbc, u.ID, p.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if active != nil {
		t.Fatalf("assignment still active after archive: %+v", active)
	}

	// Archiving again is a no-op.
	changed, err = svc.Archive(dbc, in)
	if err != nil {
		t.Fatalf("archive again: %v", err)
	}
	if changed {
		t.Fatal("second archive must be a no-op")
	}
}

// Global admins are granted the admin role on every active project without
// an explicit assignment; rerunning the sweep grants nothing new.
func TestRoleSyncAdminRoles(t *testing.T) {
	svc, roleRepo, dbc, _, p := newRoleWorld(t)
	admin := testutil.SeedUser(t, dbc.Ctx, dbc.Tx, "role-sweep-admin", types.UserTypeAdmin)

	granted, err := svc.SyncAdminRoles(dbc)
	if err != nil {
		t.Fatalf("sync admin roles: %v", err)
	}
	if granted < 1 {
		t.Fatalf("granted = %d, want at least 1", granted)
	}
	role, err := roleRepo.ActiveRole(dbc, admin.ID, p.ID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if role == nil || role.Role != types.RoleAdmin {
		t.Fatalf("active role = %+v, want admin", role)
	}

	granted, err = svc.SyncAdminRoles(dbc)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if granted != 0 {
		t.Fatalf("second sweep granted = %d, want 0", granted)
	}
}
