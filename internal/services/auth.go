package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"

	"github.com/yungbote/formai-backend/internal/apperr"
	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/normalization"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/requestdata"
	"github.com/yungbote/formai-backend/internal/types"
)

const (
	pbkdf2Iterations = 10000
	pbkdf2KeyLen     = 32
)

type RegisterInput struct {
	Username   string
	Password   string
	Email      string
	FullName   string
	SportID    string
	SkillLevel string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, username, password string) (*types.User, string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	membershipRepo repos.SportMembershipRepo
	avatarService  AvatarService
	jwtSecretKey   string
	accessTTL      time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	membershipRepo repos.SportMembershipRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		avatarService:  avatarService,
		jwtSecretKey:   jwtSecretKey,
		accessTTL:      accessTTL,
	}
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, string, error) {
	username := normalization.ParseInputString(input.Username)
	if username == "" {
		return nil, "", apperr.Auth("username_required", fmt.Errorf("a username is required to register"))
	}
	if input.Password == "" {
		return nil, "", apperr.Auth("password_required", fmt.Errorf("a password is required to register"))
	}

	exists, err := as.userRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, "", apperr.Auth("username_taken", fmt.Errorf("username %q is already taken", username))
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	sportID := normalization.ParseInputString(input.SportID)
	user := &types.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashed,
		Email:        normalization.ParseInputString(input.Email),
		FullName:     normalization.TrimInputString(input.FullName),
	}
	if sportID != "" {
		user.CurrentSportID = &sportID
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
			if repos.IsUniqueViolation(cErr) {
				return apperr.Auth("username_taken", fmt.Errorf("username %q is already taken", username))
			}
			return fmt.Errorf("failed to create user: %w", cErr)
		}
		if sportID != "" {
			membership := &types.SportMembership{
				UserID:     user.ID,
				SportID:    sportID,
				SkillLevel: types.NormalizeSkillLevel(input.SkillLevel),
				JoinedAt:   time.Now(),
			}
			if uErr := as.membershipRepo.Upsert(ctx, tx, membership); uErr != nil {
				return fmt.Errorf("failed to create sport membership: %w", uErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	// Avatar rendering and upload is decoration, never a reason to fail
	// registration.
	if as.avatarService != nil {
		if aErr := as.avatarService.CreateAndUploadUserAvatar(ctx, user); aErr != nil {
			as.log.Warn("Failed to create user avatar (ignored)", "user_id", user.ID, "error", aErr)
		}
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return user, token, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.User, string, error) {
	username = normalization.ParseInputString(username)

	users, err := as.userRepo.GetByUsernames(ctx, nil, []string{username})
	if err != nil {
		return nil, "", fmt.Errorf("error retrieving user by username: %w", err)
	}
	if len(users) == 0 {
		return nil, "", apperr.Auth("invalid_credentials", fmt.Errorf("invalid username or password"))
	}

	user := users[0]
	if !verifyPassword(user.PasswordHash, password) {
		return nil, "", apperr.Auth("invalid_credentials", fmt.Errorf("invalid username or password"))
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return user, token, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("invalid user id in token: %w", err))
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

// Stored credential format is "salt$digest": a hex salt and a hex PBKDF2
// digest of the password under that salt.
func hashPassword(password string) (string, error) {
	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(saltBytes)
	digest := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return salt + "$" + hex.EncodeToString(digest), nil
}

func verifyPassword(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	salt, wantHex := parts[0], parts[1]
	want, err := hex.DecodeString(wantHex)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
