package services

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

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

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

// fakeSessionRepo satisfies repos.SessionRepo for service tests.
type fakeSessionRepo struct {
	sessions  []*types.Session
	createErr error
	getErr    error
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.sessions = append(f.sessions, sessions...)
	return sessions, nil
}

func (f *fakeSessionRepo) GetByUserAndSport(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sportID string) ([]*types.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []*types.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.SportID == sportID {
			out = append(out, s)
		}
	}
	return out, nil
}
