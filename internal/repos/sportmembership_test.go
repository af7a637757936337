package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	stmts := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email TEXT,
			full_name TEXT,
			current_sport_id TEXT,
			avatar_bucket_key TEXT,
			avatar_url TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE user_sports (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sport_id TEXT NOT NULL,
			skill_level TEXT NOT NULL DEFAULT 'Beginner',
			joined_at DATETIME,
			profile_data TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE(user_id, sport_id)
		)`,
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sport_id TEXT NOT NULL,
			video_url TEXT,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			technical_score REAL,
			summary TEXT,
			detailed_flaws TEXT,
			equipment_advice TEXT,
			created_at DATETIME
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func TestSportMembershipUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSportMembershipRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	first := &types.SportMembership{
		UserID:     userID,
		SportID:    "table_tennis",
		SkillLevel: types.SkillLevelBeginner,
	}
	if err := repo.Upsert(ctx, nil, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := &types.SportMembership{
		UserID:     userID,
		SportID:    "table_tennis",
		SkillLevel: types.SkillLevelAdvanced,
	}
	if err := repo.Upsert(ctx, nil, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := repo.CountByUserAndSport(ctx, nil, userID, "table_tennis")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 membership row, got %d", count)
	}

	got, err := repo.GetByUserAndSport(ctx, nil, userID, "table_tennis")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SkillLevel != types.SkillLevelAdvanced {
		t.Fatalf("expected skill level to be updated to Advanced, got %q", got.SkillLevel)
	}
}

func TestSportMembershipUpsertKeepsDistinctSports(t *testing.T) {
	db := newTestDB(t)
	repo := NewSportMembershipRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	for _, sport := range []string{"table_tennis", "tennis"} {
		m := &types.SportMembership{UserID: userID, SportID: sport, SkillLevel: types.SkillLevelBeginner}
		if err := repo.Upsert(ctx, nil, m); err != nil {
			t.Fatalf("upsert %s failed: %v", sport, err)
		}
	}

	memberships, err := repo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		t.Fatalf("get by user ids failed: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
}

func TestSessionRepoOrdersByCreatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		s := &types.Session{
			ID:             uuid.New(),
			UserID:         userID,
			SportID:        "tennis",
			VideoURL:       "https://example.com/clip.mp4",
			TechnicalScore: float64(i),
		}
		if _, err := repo.Create(ctx, nil, []*types.Session{s}); err != nil {
			t.Fatalf("create session %d failed: %v", i, err)
		}
	}

	sessions, err := repo.GetByUserAndSport(ctx, nil, userID, "tennis")
	if err != nil {
		t.Fatalf("get sessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].CreatedAt.Before(sessions[i-1].CreatedAt) {
			t.Fatalf("sessions not ordered by created_at ascending")
		}
	}
}
