package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/formai-backend/internal/apperr"
	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/normalization"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/types"
)

// UserService covers account lookups and the single-active-sport switch.
type UserService interface {
	Onboard(ctx context.Context, userID uuid.UUID, sportID, skillLevel string) (*types.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetByUsername(ctx context.Context, username string) (*types.User, error)
}

type userService struct {
	db                 *gorm.DB
	log                *logger.Logger
	userRepo           repos.UserRepo
	membershipRepo     repos.SportMembershipRepo
	sportConfigService SportConfigService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	membershipRepo repos.SportMembershipRepo,
	sportConfigService SportConfigService,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:                 db,
		log:                serviceLog,
		userRepo:           userRepo,
		membershipRepo:     membershipRepo,
		sportConfigService: sportConfigService,
	}
}

// Onboard switches the user's active sport and records (or refreshes) their
// membership for it. Switching back to a sport they joined before keeps that
// membership's history; only the skill level is rewritten.
func (us *userService) Onboard(ctx context.Context, userID uuid.UUID, sportID, skillLevel string) (*types.User, error) {
	sportID = normalization.ParseInputString(sportID)
	if _, err := us.sportConfigService.Get(ctx, sportID); err != nil {
		return nil, err
	}

	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sErr := us.userRepo.SetCurrentSport(ctx, tx, userID, sportID); sErr != nil {
			return fmt.Errorf("failed to set current sport: %w", sErr)
		}
		membership := &types.SportMembership{
			UserID:     userID,
			SportID:    sportID,
			SkillLevel: types.NormalizeSkillLevel(skillLevel),
			JoinedAt:   time.Now(),
		}
		if uErr := us.membershipRepo.Upsert(ctx, tx, membership); uErr != nil {
			return fmt.Errorf("failed to upsert sport membership: %w", uErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return us.GetByID(ctx, userID)
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user_not_found", fmt.Errorf("user %s not found", userID))
	}
	return users[0], nil
}

func (us *userService) GetByUsername(ctx context.Context, username string) (*types.User, error) {
	username = normalization.ParseInputString(username)
	users, err := us.userRepo.GetByUsernames(ctx, nil, []string{username})
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user_not_found", fmt.Errorf("user %q not found", username))
	}
	return users[0], nil
}
