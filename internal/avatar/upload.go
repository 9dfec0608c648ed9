package avatar

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
)

// Upload is a raw uploaded file parked in the temp directory until the
// pipeline consumes it.
type Upload struct {
	Path     string
	Filename string
}

// Stage copies r into a fresh file under tempDir.
func Stage(r io.Reader, tempDir, filename string) (*Upload, error) {
	f, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp upload: %w", err)
	}

	upload := &Upload{Path: f.Name(), Filename: filename}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		upload.Discard()
		return nil, fmt.Errorf("failed to write temp upload: %w", err)
	}
	if err := f.Close(); err != nil {
		upload.Discard()
		return nil, fmt.Errorf("failed to close temp upload: %w", err)
	}

	return upload, nil
}

// Discard removes the temp file. Safe to call more than once.
func (u *Upload) Discard() {
	if u == nil || u.Path == "" {
		return
	}
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Str("path", u.Path).Msg("failed to remove temp upload")
	}
}
