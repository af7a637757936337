package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/formai-backend/internal/apperr"
)

func writeSportConfig(t *testing.T, dir, sportID, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, sportID+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestSportConfigGet(t *testing.T) {
	dir := t.TempDir()
	writeSportConfig(t, dir, "table_tennis", `{
		"sport_id": "table_tennis",
		"name": "Table Tennis",
		"theme_color": "#D82E2E",
		"skills": ["Forehand Drive"],
		"attributes": {"grip": "Shakehand"},
		"equipment_schema": {"bat": {}}
	}`)

	svc := NewSportConfigService(newTestLogger(t), dir)
	ctx := context.Background()

	cfg, err := svc.Get(ctx, "Table_Tennis")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cfg.Name != "Table Tennis" || cfg.ThemeColor != "#D82E2E" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	// second call hits the cache and returns the same pointer
	again, err := svc.Get(ctx, "table_tennis")
	if err != nil {
		t.Fatalf("cached get failed: %v", err)
	}
	if again != cfg {
		t.Fatalf("expected cached config to be reused")
	}
}

func TestSportConfigGetUnknownSport(t *testing.T) {
	svc := NewSportConfigService(newTestLogger(t), t.TempDir())

	_, err := svc.Get(context.Background(), "curling")
	if err == nil {
		t.Fatalf("expected not found")
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", err)
	}
}

func TestSportConfigGetRejectsPathTraversal(t *testing.T) {
	svc := NewSportConfigService(newTestLogger(t), t.TempDir())

	for _, id := range []string{"../etc/passwd", `..\win`, "a.b", ""} {
		if _, err := svc.Get(context.Background(), id); apperr.KindOf(err) != apperr.KindNotFound {
			t.Fatalf("expected %q to be rejected as not found, got %v", id, err)
		}
	}
}

func TestSportConfigList(t *testing.T) {
	dir := t.TempDir()
	writeSportConfig(t, dir, "tennis", `{"sport_id": "tennis", "name": "Tennis", "theme_color": "#0E8A5F"}`)
	writeSportConfig(t, dir, "badminton", `{"sport_id": "badminton", "name": "Badminton", "theme_color": "#0052CC"}`)
	writeSportConfig(t, dir, "broken", `{not json`)

	svc := NewSportConfigService(newTestLogger(t), dir)

	configs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 readable configs, got %d", len(configs))
	}
}
