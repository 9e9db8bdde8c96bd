package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const avatarSize = 512

type AvatarService interface {
	// CreateAndUpload renders an initials avatar for user and returns its public URL.
	CreateAndUpload(ctx context.Context, user *types.User) (string, error)
	Generate(user *types.User) ([]byte, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService
	bgColors      []color.NRGBA
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService) (AvatarService, error) {
	face, err := loadFontFace(gobold.TTF, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	return &avatarService{
		log:           log.With("service", "AvatarService"),
		bucketService: bucketService,
		bgColors: []color.NRGBA{
			{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
			{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
			{R: 0xF4, G: 0x51, B: 0x1E, A: 0xFF},
			{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
			{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
			{R: 0x6D, G: 0x4C, B: 0x41, A: 0xFF},
			{R: 0x39, G: 0x49, B: 0xAB, A: 0xFF},
			{R: 0xD8, G: 0x1B, B: 0x60, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateAndUpload(ctx context.Context, user *types.User) (string, error) {
	png, err := as.Generate(user)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("user_avatar/%s.png", user.ID.String())
	if err := as.bucketService.UploadFile(dbctx.New(ctx), key, bytes.NewReader(png), "image/png"); err != nil {
		return "", fmt.Errorf("failed to upload user avatar: %w", err)
	}
	return as.bucketService.GetPublicURL(key), nil
}

func (as *avatarService) Generate(user *types.User) ([]byte, error) {
	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(as.pickColor(user.ID.String()))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)
	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials, avatarSize/2, avatarSize/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// pickColor is stable per user so re-rendering keeps the same background.
func (as *avatarService) pickColor(seed string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return as.bgColors[int(h.Sum32()%uint32(len(as.bgColors)))]
}

func computeInitials(first, last string) string {
	return initial(first) + initial(last)
}

func initial(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}

func loadFontFace(ttf []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
