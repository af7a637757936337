package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/types"
)

const (
	// DefaultSportID is assumed for users who have not picked a sport yet.
	DefaultSportID = "table_tennis"

	pointsPerSession = 150
	statsCacheTTL    = 30 * time.Second
)

// DashboardStats is the progression block rendered on the home screen.
type DashboardStats struct {
	Points   int    `json:"points"`
	Accuracy string `json:"accuracy"`
	Tier     string `json:"tier"`
}

type DashboardService interface {
	GetStats(ctx context.Context, userID uuid.UUID, sportID string) DashboardStats
}

type dashboardService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	redisClient *redis.Client
}

func NewDashboardService(log *logger.Logger, sessionRepo repos.SessionRepo, redisClient *redis.Client) DashboardService {
	serviceLog := log.With("service", "DashboardService")
	return &dashboardService{
		log:         serviceLog,
		sessionRepo: sessionRepo,
		redisClient: redisClient,
	}
}

// GetStats computes the user's progression for one sport. The dashboard must
// always render, so store and cache failures degrade to zero stats instead of
// erroring.
func (ds *dashboardService) GetStats(ctx context.Context, userID uuid.UUID, sportID string) DashboardStats {
	cacheKey := fmt.Sprintf("dashstats:%s:%s", userID, sportID)
	if cached, ok := ds.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	sessions, err := ds.sessionRepo.GetByUserAndSport(ctx, nil, userID, sportID)
	if err != nil {
		ds.log.Warn("Failed to load sessions for dashboard, serving zero stats", "user_id", userID, "sport_id", sportID, "error", err)
		return DashboardStats{Points: 0, Accuracy: "0%", Tier: types.SkillLevelBeginner}
	}

	stats := computeStats(sessions)
	ds.cacheSet(ctx, cacheKey, stats)
	return stats
}

// computeStats derives points, accuracy and tier from the full session
// history. Sessions with a zero score still count toward the average.
func computeStats(sessions []*types.Session) DashboardStats {
	n := len(sessions)
	if n == 0 {
		return DashboardStats{Points: 0, Accuracy: "0%", Tier: types.SkillLevelBeginner}
	}

	var total float64
	for _, s := range sessions {
		total += s.TechnicalScore
	}
	avg := total / float64(n)

	tier := types.SkillLevelBeginner
	switch {
	case n > 10 && avg > 7:
		tier = types.SkillLevelPro
	case n > 5:
		tier = types.SkillLevelAdvanced
	case n > 2:
		tier = types.SkillLevelIntermediate
	}

	return DashboardStats{
		Points:   n * pointsPerSession,
		Accuracy: fmt.Sprintf("%d%%", int(math.Round(avg*10))),
		Tier:     tier,
	}
}

func (ds *dashboardService) cacheGet(ctx context.Context, key string) (DashboardStats, bool) {
	if ds.redisClient == nil {
		return DashboardStats{}, false
	}
	raw, err := ds.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			ds.log.Warn("Dashboard cache read failed (ignored)", "key", key, "error", err)
		}
		return DashboardStats{}, false
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return DashboardStats{}, false
	}
	return stats, true
}

func (ds *dashboardService) cacheSet(ctx context.Context, key string, stats DashboardStats) {
	if ds.redisClient == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := ds.redisClient.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
		ds.log.Warn("Dashboard cache write failed (ignored)", "key", key, "error", err)
	}
}
