// Package export writes finished artwork to PNG and PDF files.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"BuddyStudio/internal/errors"
)

// PNG encodes img.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode png")
	}
	return nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	return saveFile(path, func(w io.Writer) error { return PNG(w, img) })
}

// FileName builds "mi-obra-<buddy>-<unix millis>.<ext>".
func FileName(buddy, ext string, now time.Time) string {
	buddy = strings.ToLower(strings.Join(strings.Fields(buddy), "-"))
	if buddy == "" {
		buddy = "buddy"
	}
	return fmt.Sprintf("mi-obra-%s-%d.%s", buddy, now.UnixMilli(), strings.TrimPrefix(ext, "."))
}

// saveFile creates path and its directory, and removes a partial file if
// write fails.
func saveFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(errors.ErrCodeIO, cerr, "close %s", path)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}
