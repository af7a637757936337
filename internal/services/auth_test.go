package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/formai-backend/internal/apperr"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/requestdata"
	"github.com/yungbote/formai-backend/internal/types"
)

func newTestAuthService(t *testing.T) (AuthService, repos.SportMembershipRepo) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	membershipRepo := repos.NewSportMembershipRepo(db, log)
	svc := NewAuthService(db, log, userRepo, membershipRepo, nil, "test-secret", time.Hour)
	return svc, membershipRepo
}

func TestRegisterThenLoginRoundtrip(t *testing.T) {
	svc, membershipRepo := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Username:   "Ada",
		Password:   "hunter2",
		Email:      "ada@example.com",
		FullName:   "Ada Lovelace",
		SportID:    "table_tennis",
		SkillLevel: "Intermediate",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected an access token from register")
	}
	if user.Username != "ada" {
		t.Fatalf("expected username to be normalized to lowercase, got %q", user.Username)
	}
	if user.CurrentSportID == nil || *user.CurrentSportID != "table_tennis" {
		t.Fatalf("expected current sport to be set, got %v", user.CurrentSportID)
	}

	membership, err := membershipRepo.GetByUserAndSport(ctx, nil, user.ID, "table_tennis")
	if err != nil {
		t.Fatalf("expected a membership row: %v", err)
	}
	if membership.SkillLevel != types.SkillLevelIntermediate {
		t.Fatalf("expected Intermediate skill level, got %q", membership.SkillLevel)
	}

	loggedIn, loginToken, err := svc.Login(ctx, "ADA", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned a different user: %s vs %s", loggedIn.ID, user.ID)
	}
	if loginToken == "" {
		t.Fatalf("expected an access token from login")
	}
}

func TestLoginWrongPasswordIsAuthError(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "correct"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(ctx, "bob", "wrong")
	if err == nil {
		t.Fatalf("expected login to fail")
	}
	if apperr.KindOf(err) != apperr.KindAuth {
		t.Fatalf("expected auth error kind, got %v (%v)", apperr.KindOf(err), err)
	}
	if apperr.CodeOf(err) != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials code, got %q", apperr.CodeOf(err))
	}
}

func TestLoginUnknownUserIsSameAuthError(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	if err == nil {
		t.Fatalf("expected login to fail")
	}
	if apperr.KindOf(err) != apperr.KindAuth || apperr.CodeOf(err) != "invalid_credentials" {
		t.Fatalf("unknown user must look identical to wrong password, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "pw"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, _, err := svc.Register(ctx, RegisterInput{Username: "Carol", Password: "pw2"})
	if err == nil {
		t.Fatalf("expected duplicate register to fail")
	}
	if apperr.KindOf(err) != apperr.KindAuth || apperr.CodeOf(err) != "username_taken" {
		t.Fatalf("expected username_taken auth error, got %v", err)
	}
}

func TestSetContextFromToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Username: "dave", Password: "pw"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	ctx, err = svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("token rejected: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("expected request data for user %s, got %+v", user.ID, rd)
	}

	if _, err := svc.SetContextFromToken(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestPasswordHashFormat(t *testing.T) {
	hashed, err := hashPassword("secret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !verifyPassword(hashed, "secret") {
		t.Fatalf("expected password to verify against its own hash")
	}
	if verifyPassword(hashed, "Secret") {
		t.Fatalf("expected different password to fail verification")
	}
	if verifyPassword("malformed-no-separator", "secret") {
		t.Fatalf("expected malformed stored hash to fail verification")
	}
}
