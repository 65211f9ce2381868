package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/videolabel-backend/internal/data/repos/testutil"
	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
)

func newUserService(t *testing.T) (UserService, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	return NewUserService(users.NewUserRepo(db, log), log),
		dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func TestUserValidateNew(t *testing.T) {
	svc, _ := newUserService(t)
	cases := []struct {
		name    string
		in      UserInput
		wantErr bool
	}{
		{"human with email", UserInput{UserIDStr: "1", Email: "a@b.c", UserType: types.UserTypeHuman}, false},
		{"human without email", UserInput{UserIDStr: "1", UserType: types.UserTypeHuman}, true},
		{"model without email", UserInput{UserIDStr: "m1", UserType: types.UserTypeModel}, false},
		{"missing user_id", UserInput{Email: "a@b.c", UserType: types.UserTypeHuman}, true},
		{"unknown type", UserInput{UserIDStr: "1", Email: "a@b.c", UserType: "robot"}, true},
	}
	for _, tc := range cases {
		err := svc.ValidateNew(tc.in)
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestUserDiffPasswordRehashOnlyOnChange(t *testing.T) {
	svc, dbc := newUserService(t)

	created, err := svc.Create(dbc, UserInput{
		UserIDStr: "usr-pw",
		Email:     "usr-pw@example.com",
		Password:  "hunter2",
		UserType:  types.UserTypeHuman,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2")) != nil {
		t.Fatal("stored hash does not match the password")
	}

	// Same password: the hash differs every run, so the diff must compare,
	// not rehash.
	diff, err := svc.Diff(created, UserInput{
		UserIDStr: "usr-pw",
		Email:     "usr-pw@example.com",
		Password:  "hunter2",
		UserType:  types.UserTypeHuman,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(diff) != 0 {
		t.Fatalf("unchanged user produced diff %v", diff)
	}

	// New password: exactly the hash changes.
	diff, err = svc.Diff(created, UserInput{
		UserIDStr: "usr-pw",
		Email:     "usr-pw@example.com",
		Password:  "correct horse",
		UserType:  types.UserTypeHuman,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(diff) != 1 {
		t.Fatalf("diff = %v", diff)
	}
	hash, ok := diff["password_hash"].(string)
	if !ok {
		t.Fatalf("diff missing password_hash: %v", diff)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")) != nil {
		t.Fatal("new hash does not match the new password")
	}
}

func TestUserDiffEmailAndArchive(t *testing.T) {
	svc, dbc := newUserService(t)
	created, err := svc.Create(dbc, UserInput{
		UserIDStr: "usr-em",
		Email:     "old@example.com",
		UserType:  types.UserTypeHuman,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	diff, err := svc.Diff(created, UserInput{
		UserIDStr: "usr-em",
		Email:     "new@example.com",
		UserType:  types.UserTypeHuman,
		Archived:  true,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if diff["email"] != "new@example.com" || diff["is_archived"] != true {
		t.Fatalf("diff = %v", diff)
	}
}
