package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/formai-backend/internal/apperr"
	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/normalization"
	"github.com/yungbote/formai-backend/internal/types"
)

// SportConfigService serves the static, hand-authored per-sport definitions.
// Configs are immutable, so they are cached for the process lifetime;
// singleflight keeps a cold start from loading the same file repeatedly.
type SportConfigService interface {
	Get(ctx context.Context, sportID string) (*types.SportConfig, error)
	List(ctx context.Context) ([]*types.SportConfig, error)
}

type sportConfigService struct {
	log *logger.Logger
	dir string

	mu    sync.RWMutex
	cache map[string]*types.SportConfig
	sf    singleflight.Group
}

func NewSportConfigService(log *logger.Logger, dir string) SportConfigService {
	serviceLog := log.With("service", "SportConfigService")
	return &sportConfigService{
		log:   serviceLog,
		dir:   dir,
		cache: make(map[string]*types.SportConfig),
	}
}

func (scs *sportConfigService) Get(ctx context.Context, sportID string) (*types.SportConfig, error) {
	sportID = normalization.ParseInputString(sportID)
	if sportID == "" || strings.ContainsAny(sportID, `/\.`) {
		return nil, apperr.NotFound("sport_config_not_found", fmt.Errorf("invalid sport id %q", sportID))
	}

	scs.mu.RLock()
	if cfg, ok := scs.cache[sportID]; ok {
		scs.mu.RUnlock()
		return cfg, nil
	}
	scs.mu.RUnlock()

	v, err, _ := scs.sf.Do(sportID, func() (interface{}, error) {
		return scs.load(sportID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.SportConfig), nil
}

func (scs *sportConfigService) load(sportID string) (*types.SportConfig, error) {
	path := filepath.Join(scs.dir, sportID+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("sport_config_not_found", fmt.Errorf("sport config for %s not found", sportID))
		}
		return nil, fmt.Errorf("failed to read sport config %s: %w", sportID, err)
	}

	var cfg types.SportConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sport config %s: %w", sportID, err)
	}
	if cfg.SportID == "" {
		cfg.SportID = sportID
	}

	scs.mu.Lock()
	scs.cache[sportID] = &cfg
	scs.mu.Unlock()

	return &cfg, nil
}

func (scs *sportConfigService) List(ctx context.Context) ([]*types.SportConfig, error) {
	entries, err := os.ReadDir(scs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sport configs: %w", err)
	}

	var out []*types.SportConfig
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sportID := strings.TrimSuffix(entry.Name(), ".json")
		cfg, err := scs.Get(ctx, sportID)
		if err != nil {
			scs.log.Warn("Skipping unreadable sport config", "sport_id", sportID, "error", err)
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}
