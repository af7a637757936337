package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/types"
)

type SportMembershipRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, membership *types.SportMembership) error
	GetByUserAndSport(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sportID string) (*types.SportMembership, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.SportMembership, error)
	CountByUserAndSport(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sportID string) (int64, error)
}

type sportMembershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSportMembershipRepo(db *gorm.DB, baseLog *logger.Logger) SportMembershipRepo {
	repoLog := baseLog.With("repo", "SportMembershipRepo")
	return &sportMembershipRepo{db: db, log: repoLog}
}

// Upsert inserts the membership or, when a row already exists for the
// (user_id, sport_id) pair, updates its skill level in place. One statement,
// so concurrent onboarding of the same pair cannot produce duplicates.
func (smr *sportMembershipRepo) Upsert(ctx context.Context, tx *gorm.DB, membership *types.SportMembership) error {
	transaction := tx
	if transaction == nil {
		transaction = smr.db
	}

	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now()
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "sport_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"skill_level": membership.SkillLevel,
				"updated_at":  time.Now(),
			}),
		}).
		Create(membership).Error
}

func (smr *sportMembershipRepo) GetByUserAndSport(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sportID string) (*types.SportMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = smr.db
	}

	var result types.SportMembership
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND sport_id = ?", userID, sportID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (smr *sportMembershipRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.SportMembership, error) {
	transaction := tx
	if transaction == nil {
		transaction = smr.db
	}

	var results []*types.SportMembership
	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (smr *sportMembershipRepo) CountByUserAndSport(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sportID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = smr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.SportMembership{}).
		Where("user_id = ? AND sport_id = ?", userID, sportID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
