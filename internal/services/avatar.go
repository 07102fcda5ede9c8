package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/types"
)

// AvatarService renders an initials avatar for a new user into the local
// avatar directory. It is optional: without a configured font the service is
// disabled and registration proceeds without an avatar.
type AvatarService interface {
	Enabled() bool
	CreateUserAvatar(ctx context.Context, user *types.User) (string, error)
}

const (
	avatarRenderSize = 1024
	avatarFinalSize  = 512
	avatarFontSize   = 412
)

var avatarPalette = []color.NRGBA{
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0x14, G: 0xB8, B: 0xA6, A: 0xFF},
	{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF},
}

type avatarService struct {
	log      *logger.Logger
	dir      string
	fontFace font.Face
}

type disabledAvatarService struct{}

func (disabledAvatarService) Enabled() bool { return false }
func (disabledAvatarService) CreateUserAvatar(context.Context, *types.User) (string, error) {
	return "", nil
}

// NewAvatarService loads the configured TTF font and prepares the avatar
// directory. An empty font path yields a disabled service rather than an
// error.
func NewAvatarService(log *logger.Logger, dir, fontPath string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	if strings.TrimSpace(fontPath) == "" {
		serviceLog.Info("No avatar font configured, avatar generation disabled")
		return disabledAvatarService{}, nil
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("could not read avatar font %s: %w", fontPath, err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("could not parse avatar font %s: %w", fontPath, err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: avatarFontSize})

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create avatar directory %s: %w", dir, err)
	}

	return &avatarService{log: serviceLog, dir: dir, fontFace: face}, nil
}

func (as *avatarService) Enabled() bool { return true }

// CreateUserAvatar renders the user's initial on a palette background and
// writes <id>.png under the avatar directory, returning the relative path.
func (as *avatarService) CreateUserAvatar(_ context.Context, user *types.User) (string, error) {
	bg := paletteColorFor(user.Username)
	initial := usernameInitial(user.Username)

	dc := gg.NewContext(avatarRenderSize, avatarRenderSize)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetFontFace(as.fontFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(initial, float64(avatarRenderSize)/2, float64(avatarRenderSize)/2.15, 0.5, 0.5)

	// Render oversized, then downscale for smooth edges.
	scaled := image.NewRGBA(image.Rect(0, 0, avatarFinalSize, avatarFinalSize))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), dc.Image(), dc.Image().Bounds(), xdraw.Over, nil)

	filename := user.ID.String() + ".png"
	fullPath := filepath.Join(as.dir, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("could not create avatar file: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, scaled); err != nil {
		return "", fmt.Errorf("could not encode avatar: %w", err)
	}

	as.log.Debug("Avatar rendered", "path", fullPath)
	return "/avatars/" + filename, nil
}

func paletteColorFor(username string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return avatarPalette[int(h.Sum32())%len(avatarPalette)]
}

func usernameInitial(username string) string {
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "?"
}
