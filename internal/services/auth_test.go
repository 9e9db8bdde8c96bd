package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
)

func newAuthFixture(t *testing.T) (AuthService, *Tokens, *recordingOutbox, repos.UserRepo, func(active bool) *types.User) {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	users := repos.NewUserRepo(gdb, log)
	tokens := NewTokens("test-secret")
	outbox := &recordingOutbox{}
	svc := NewAuthService(gdb, log, users, tokens, outbox, MailTemplates{AppName: "CourseHub", BaseURL: "https://app.example.com"}, AuthConfig{})

	seed := func(active bool) *types.User {
		hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		u := testutil.SeedUser(t, context.Background(), gdb, types.RoleStudent)
		if err := users.UpdateFields(dbctx.New(context.Background()), u.ID, map[string]any{"password": string(hash), "is_active": active}); err != nil {
			t.Fatalf("set password: %v", err)
		}
		u.Password = string(hash)
		u.IsActive = active
		return u
	}
	return svc, tokens, outbox, users, seed
}

func TestSignInAndVerifyToken(t *testing.T) {
	svc, _, _, _, seed := newAuthFixture(t)
	bg := context.Background()
	u := seed(true)

	_, err := svc.SignIn(bg, u.Email, "wrong")
	wantStatus(t, err, http.StatusUnauthorized)

	res, err := svc.SignIn(bg, u.Email, "old-password")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	ctx, err := svc.VerifyToken(bg, "Bearer-less "+res.AccessToken)
	wantStatus(t, err, http.StatusUnauthorized)

	ctx, err = svc.VerifyToken(bg, res.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != u.ID || rd.Role != string(types.RoleStudent) {
		t.Fatalf("unexpected request data: %+v", rd)
	}

	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	_, err = svc.VerifyToken(bg, res.AccessToken)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestSignInRequiresVerifiedEmail(t *testing.T) {
	svc, tokens, _, users, seed := newAuthFixture(t)
	bg := context.Background()
	u := seed(false)

	_, err := svc.SignIn(bg, u.Email, "old-password")
	wantStatus(t, err, http.StatusUnauthorized)

	session, err := tokens.Issue(u, "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	wantStatus(t, svc.VerifyEmail(bg, session), http.StatusBadRequest)

	verify, err := tokens.Issue(u, PurposeVerifyEmail, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.VerifyEmail(bg, verify); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	got, err := users.GetByID(dbctx.New(context.Background()), u.ID)
	if err != nil || got == nil || !got.IsActive {
		t.Fatalf("expected active user, got %+v err=%v", got, err)
	}
	if _, err := svc.SignIn(bg, u.Email, "old-password"); err != nil {
		t.Fatalf("SignIn after verification: %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, tokens, outbox, _, seed := newAuthFixture(t)
	bg := context.Background()
	u := seed(true)

	if err := svc.RequestPasswordReset(bg, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should be silent: %v", err)
	}
	if outbox.count() != 0 {
		t.Fatalf("expected no mail for unknown email")
	}
	if err := svc.RequestPasswordReset(bg, u.Email); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if outbox.count() != 1 || outbox.msgs[0].To != u.Email {
		t.Fatalf("expected one reset mail to %s, got %+v", u.Email, outbox.msgs)
	}

	session, err := svc.SignIn(bg, u.Email, "old-password")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	reset, err := tokens.Issue(u, PurposeResetPassword, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	wantStatus(t, svc.ResetPassword(bg, reset, "new-password", "other"), http.StatusBadRequest)
	wantStatus(t, svc.ResetPassword(bg, session.AccessToken, "new-password", "new-password"), http.StatusBadRequest)
	if err := svc.ResetPassword(bg, reset, "new-password", "new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	_, err = svc.VerifyToken(bg, session.AccessToken)
	wantStatus(t, err, http.StatusUnauthorized)
	_, err = svc.SignIn(bg, u.Email, "old-password")
	wantStatus(t, err, http.StatusUnauthorized)
	if _, err := svc.SignIn(bg, u.Email, "new-password"); err != nil {
		t.Fatalf("SignIn with new password: %v", err)
	}
}

func TestUpdatePasswordChecksOldPassword(t *testing.T) {
	svc, _, _, _, seed := newAuthFixture(t)
	u := seed(true)
	ctx := asUser(u)

	wantStatus(t, svc.UpdatePassword(ctx, "wrong", "new-password", "new-password"), http.StatusBadRequest)
	wantStatus(t, svc.UpdatePassword(ctx, "old-password", "old-password", "old-password"), http.StatusBadRequest)
	if err := svc.UpdatePassword(ctx, "old-password", "new-password", "new-password"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if _, err := svc.SignIn(context.Background(), u.Email, "new-password"); err != nil {
		t.Fatalf("SignIn with new password: %v", err)
	}
}
