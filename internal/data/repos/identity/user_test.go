package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
)

func TestUserRepoLookupsAndSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	phone := "+15550001"
	u := &types.User{FirstName: "Grace", LastName: "Hopper", Email: "  Grace@Example.com ", Phone: &phone, Password: "x", Role: types.RoleInstructor}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "grace@example.com" {
		t.Fatalf("email should be normalized, got %q", u.Email)
	}

	got, err := repo.GetByEmail(dbc, "GRACE@example.com")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: %v %v", got, err)
	}
	if ok, _ := repo.PhoneExists(dbc, phone, got.ID); ok {
		t.Fatalf("phone check must exclude the user itself")
	}
	if ok, _ := repo.PhoneExists(dbc, phone, uuid.Nil); !ok {
		t.Fatalf("expected phone to exist")
	}
	if wrongRole, _ := repo.GetByIDAndRole(dbc, u.ID, types.RoleStudent); wrongRole != nil {
		t.Fatalf("role-scoped lookup must miss")
	}

	testutil.SeedUser(t, ctx, tx, types.RoleInstructor)
	list, count, err := repo.List(dbc, UserFilter{Role: types.RoleInstructor, Search: "hop"}, pagination.Params{})
	if err != nil || count != 1 || list[0].ID != u.ID {
		t.Fatalf("search: count=%d err=%v", count, err)
	}
}
