package pdf

import "fmt"

// Service handles PDF file operations by orchestrating the reader, validator
// and input search
type Service struct {
	reader    *Reader
	validator *Validator
	search    *Search
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64) *Service {
	return &Service{
		reader:    NewReader(maxFileSize),
		validator: NewValidator(maxFileSize),
		search:    NewSearch(maxFileSize),
	}
}

// ExtractFile validates a PDF on disk and returns the text of its pages
func (s *Service) ExtractFile(path string) (*Document, error) {
	pageCount, err := s.validator.ValidateFile(path)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	doc, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if doc.PageCount == 0 {
		doc.PageCount = pageCount
	}
	return doc, nil
}

// FindInputs lists the PDFs and manifests in a directory
func (s *Service) FindInputs(directory string) (*Inputs, error) {
	return s.search.FindInputs(directory)
}
