package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
)

func TestCreateAdmin(t *testing.T) {
	log := testutil.Logger(t)
	users := repos.NewUserRepo(testutil.DB(t), log)
	dbc := dbctx.New(context.Background())

	in := adminInput{Email: " Root@Example.com ", Password: "s3cret-pass", FirstName: "Root", LastName: "Admin"}
	u, err := createAdmin(dbc, users, in)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if u.Email != "root@example.com" || u.Role != types.RoleAdmin || !u.IsActive {
		t.Fatalf("unexpected admin: %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret-pass")); err != nil {
		t.Fatalf("password not hashed with bcrypt: %v", err)
	}

	if _, err := createAdmin(dbc, users, in); err == nil {
		t.Fatalf("expected duplicate email to fail")
	}
	in.Password = "short"
	in.Email = "other@example.com"
	if _, err := createAdmin(dbc, users, in); err == nil {
		t.Fatalf("expected short password to fail")
	}
}

func TestConfigLayering(t *testing.T) {
	v := viper.New()
	root := newRootCmd(v)

	cfgPath := filepath.Join(t.TempDir(), "coursehub.yaml")
	if err := os.WriteFile(cfgPath, []byte("postgres-name: fromfile\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COURSEHUB_POSTGRES_HOST", "db.internal")
	if err := root.PersistentFlags().Set("config", cfgPath); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := root.PersistentFlags().Set("postgres-user", "cli"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := initConfig(v, root); err != nil {
		t.Fatalf("init config: %v", err)
	}

	pc := postgresConfig(v)
	if pc.Host != "db.internal" {
		t.Fatalf("host: want env value, got %q", pc.Host)
	}
	if pc.User != "cli" {
		t.Fatalf("user: want flag value, got %q", pc.User)
	}
	if pc.Name != "fromfile" {
		t.Fatalf("name: want file value, got %q", pc.Name)
	}
}
