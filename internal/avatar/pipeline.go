package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSize    = 150
	DefaultQuality = 90

	// PublicDir is the URL prefix avatars are served under, relative to the static root.
	PublicDir = "/avatars"
)

var (
	ErrDecode   = errors.New("unsupported or corrupt image")
	ErrTargetID = errors.New("invalid avatar target id")
)

type Config struct {
	StaticRoot string
	TempDir    string
	Size       int
	Quality    int
}

type Pipeline struct {
	cfg Config
}

func NewPipeline(cfg Config) *Pipeline {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	return &Pipeline{cfg: cfg}
}

// Stage parks an incoming upload in the configured temp directory.
func (p *Pipeline) Stage(r io.Reader, filename string) (*Upload, error) {
	return Stage(r, p.cfg.TempDir, filename)
}

// PublicPath is the sub-path stored on the record, e.g. /avatars/<id>.jpg.
func PublicPath(targetID string) string {
	return path.Join(PublicDir, targetID+".jpg")
}

// Process normalizes the uploaded image into a square opaque JPEG stored
// at PublicPath(targetID) under the static root and returns that public path.
// The upload is removed on every return path.
func (p *Pipeline) Process(ctx context.Context, upload Upload, targetID string) (string, error) {
	defer upload.Discard()

	if targetID == "" || strings.ContainsAny(targetID, `/\.`) {
		return "", fmt.Errorf("%w: %q", ErrTargetID, targetID)
	}

	raw, err := os.ReadFile(upload.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	encoded, err := p.normalize(raw)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	publicPath := PublicPath(targetID)
	dst := filepath.Join(p.cfg.StaticRoot, filepath.FromSlash(publicPath))
	if err := writeFileAtomic(dst, encoded); err != nil {
		return "", err
	}

	log.Info().Str("target_id", targetID).Str("path", publicPath).Int("bytes", len(encoded)).Msg("avatar stored")
	return publicPath, nil
}

// normalize decodes raw, crops it to fill a Size x Size box, flattens any
// transparency onto white and encodes it as JPEG.
func (p *Pipeline) normalize(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	size := p.cfg.Size
	filled := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	flat := imaging.Overlay(imaging.New(size, size, color.White), filled, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(p.cfg.Quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces dst only once the full content is on disk.
func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create avatar dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".avatar-*")
	if err != nil {
		return fmt.Errorf("failed to create avatar file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write avatar file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close avatar file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod avatar file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move avatar into place: %w", err)
	}
	return nil
}
