package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format selects the artifact encoding
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat is returned for an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ArtifactPrefix is the file name prefix of generated import lists
const ArtifactPrefix = "Bestellliste"

// FileName builds a timestamped artifact name such as Bestellliste_20250131_142501.xlsx
func FileName(prefix string, format Format, ts time.Time) string {
	return fmt.Sprintf("%s_%s%s", prefix, ts.Format("20060102_150405"), format.Extension())
}

// Save writes an artifact through a temporary file in the target directory and
// renames it into place, so a failed write never leaves a partial artifact.
func Save(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	tmpName = ""

	return nil
}
