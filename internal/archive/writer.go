// Package archive bundles generated invoices and the summary into a zip.
package archive

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Writer streams named entries into a zip archive. Entry names are unique;
// a repeated name is dropped.
type Writer struct {
	zw      *zip.Writer
	names   map[string]bool
	entries []string
	logger  *zap.Logger
}

// NewWriter starts an archive on w. comment is stored as the zip comment.
func NewWriter(w io.Writer, comment string, logger *zap.Logger) (*Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	zw := zip.NewWriter(w)
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return nil, fmt.Errorf("failed to set archive comment: %w", err)
		}
	}

	return &Writer{
		zw:     zw,
		names:  make(map[string]bool),
		logger: logger,
	}, nil
}

// Add writes data under name. It reports false, without error, when name
// is already in the archive.
func (a *Writer) Add(name string, data []byte, modified time.Time) (bool, error) {
	name = path.Clean(name)
	if name == "." || name == "/" || path.IsAbs(name) {
		return false, fmt.Errorf("invalid archive entry name: %q", name)
	}

	if a.names[name] {
		a.logger.Warn("duplicate archive entry skipped", zap.String("entry", name))
		return false, nil
	}

	fw, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return false, fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}

	a.names[name] = true
	a.entries = append(a.entries, name)
	a.logger.Debug("archive entry written", zap.String("entry", name), zap.Int("bytes", len(data)))
	return true, nil
}

// Entries returns the names written so far, in order
func (a *Writer) Entries() []string {
	return append([]string(nil), a.entries...)
}

// Close finishes the archive. It does not close the underlying writer.
func (a *Writer) Close() error {
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
