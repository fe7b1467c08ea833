package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Search discovers AWB PDFs and manifest workbooks in an input directory
type Search struct {
	maxFileSize int64
	validator   *Validator
}

// NewSearch creates a new input search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// FindInputs lists the PDFs and manifests directly inside directory. Hidden
// files, office lock files and oversized files are skipped.
func (s *Search) FindInputs(directory string) (*Inputs, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	entries, err := os.ReadDir(absDirectory)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	result := &Inputs{Directory: absDirectory}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}

		kind, ok := classify(name)
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() == 0 || info.Size() > s.maxFileSize {
			continue
		}

		fileInfo := FileInfo{
			Path:         filepath.Join(absDirectory, name),
			Name:         name,
			Kind:         kind,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		}

		switch kind {
		case KindPDF:
			if err := s.validator.ValidateFileInfo(fileInfo.Path, info); err != nil {
				continue
			}
			result.PDFs = append(result.PDFs, fileInfo)
		case KindManifest:
			result.Manifests = append(result.Manifests, fileInfo)
		}
	}

	sortByName(result.PDFs)
	sortByName(result.Manifests)

	return result, nil
}

// classify reports the input kind of a file name
func classify(name string) (FileKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, true
	case ".xlsx", ".xlsm":
		return KindManifest, true
	}
	return "", false
}

func sortByName(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
}
