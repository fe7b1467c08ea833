package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrUnreadable is returned when a manifest opens neither as a plain
// workbook nor with the configured password.
var ErrUnreadable = errors.New("manifest could not be opened")

// Loader reads manifest workbooks, decrypting them when needed
type Loader struct {
	password string
	logger   *zap.Logger
}

// NewLoader creates a loader that falls back to password for encrypted files
func NewLoader(password string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{password: password, logger: logger}
}

// Load reads the manifest at path
func (l *Loader) Load(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open manifest: %w", err)
	}
	defer f.Close()

	return l.LoadReader(filepath.Base(path), f)
}

// LoadReader reads a manifest from r. The plain workbook is tried first,
// then the configured password.
func (l *Loader) LoadReader(name string, r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", name, err)
	}

	f, plainErr := excelize.OpenReader(bytes.NewReader(data))
	if plainErr != nil {
		if l.password == "" {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, plainErr)
		}

		var pwErr error
		f, pwErr = excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: l.password})
		if pwErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, pwErr)
		}
		l.logger.Debug("manifest decrypted with password", zap.String("manifest", name))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", ErrUnreadable, name)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], name, err)
	}

	wb := buildWorkbook(rows)
	wb.Name = name
	wb.Sheet = sheets[0]

	l.logger.Debug("manifest loaded",
		zap.String("manifest", name),
		zap.String("sheet", wb.Sheet),
		zap.Int("columns", len(wb.Columns)),
		zap.Int("rows", len(wb.Rows)))

	return wb, nil
}

// buildWorkbook turns raw sheet rows into a header plus string rows. Fully
// blank rows are dropped.
func buildWorkbook(rows [][]string) *Workbook {
	wb := &Workbook{}
	if len(rows) == 0 {
		return wb
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	header := make([]string, width)
	copy(header, rows[0])
	wb.Columns = headerNames(header)

	for _, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		row := make(Row, width)
		for i, col := range wb.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		wb.Rows = append(wb.Rows, row)
	}
	return wb
}

// headerNames trims surrounding whitespace from header cells, names blank
// headers "Unnamed: i" and suffixes repeats with ".1", ".2" and so on.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if taken[name] {
			base := name
			for {
				seen[base]++
				name = base + "." + strconv.Itoa(seen[base])
				if !taken[name] {
					break
				}
			}
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
