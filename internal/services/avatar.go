package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"gorm.io/gorm"

	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/types"
)

// AvatarService renders an initials placeholder avatar for a new user and
// uploads it to blob storage.
type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	bucketService BucketService

	bgColors []color.NRGBA
	fontFace font.Face
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, bucketService BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	parsedFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse avatar font: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    206,
		DPI:     72,
		Hinting: font.HintingNone,
	})

	return &avatarService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		bucketService: bucketService,
		bgColors: []color.NRGBA{
			{R: 0x00, G: 0x52, B: 0xCC, A: 0xFF},
			{R: 0xD8, G: 0x2E, B: 0x2E, A: 0xFF},
			{R: 0x0E, G: 0x8A, B: 0x5F, A: 0xFF},
			{R: 0x6B, G: 0x3F, B: 0xA0, A: 0xFF},
			{R: 0xC2, G: 0x6A, B: 0x00, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, user *types.User) error {
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("avatars/%s.png", user.ID.String())
	if err := as.bucketService.UploadFile(ctx, key, bytes.NewReader(buf.Bytes()), "image/png"); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	user.AvatarBucketKey = key
	user.AvatarURL = as.bucketService.GetPublicURL(key)

	if err := as.userRepo.SetAvatar(ctx, nil, user.ID, key, user.AvatarURL); err != nil {
		return fmt.Errorf("failed to store avatar reference: %w", err)
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.bgColors[int(user.ID[0])%len(as.bgColors)]
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FullName, user.Username)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// computeInitials prefers the first letters of the first two words of the
// full name, falling back to the username's first letter.
func computeInitials(fullName, username string) string {
	words := strings.Fields(fullName)
	switch {
	case len(words) >= 2:
		return strings.ToUpper(words[0][:1] + words[1][:1])
	case len(words) == 1:
		return strings.ToUpper(words[0][:1])
	case len(username) > 0:
		return strings.ToUpper(username[:1])
	default:
		return "?"
	}
}
