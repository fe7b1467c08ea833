package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// Reader handles PDF text extraction, one page at a time
type Reader struct {
	maxFileSize int64
	maxTextSize int
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ReadFile extracts the text of every page of a PDF file
func (r *Reader) ReadFile(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if fileInfo.Size() > r.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	return r.Read(path, f)
}

// Read extracts page text from a PDF held by rd. name becomes the
// document path.
func (r *Reader) Read(name string, rd io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(rd, r.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > r.maxFileSize {
		return nil, fmt.Errorf("file too large: more than %d bytes", r.maxFileSize)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	doc := &Document{
		Path: name,
		Name: filepath.Base(name),
		Size: int64(len(data)),
	}
	if err := r.extractPages(pdfReader, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// extractPages fills doc with the text of each readable page
func (r *Reader) extractPages(pdfReader *pdf.Reader, doc *Document) error {
	doc.PageCount = pdfReader.NumPage()
	totalLength := 0

	for pageNum := 1; pageNum <= doc.PageCount; pageNum++ {
		content, ok := r.pageText(pdfReader, pageNum)
		if !ok {
			doc.PagesSkipped++
			continue
		}

		if totalLength+len(content) > r.maxTextSize {
			return fmt.Errorf("text content exceeds %d bytes at page %d", r.maxTextSize, pageNum)
		}
		totalLength += len(content)

		doc.Pages = append(doc.Pages, PageText{Number: pageNum, Text: content})
	}

	if len(doc.Pages) == 0 {
		return fmt.Errorf("no text content could be extracted from PDF")
	}
	return nil
}

// pageText returns the plain text of a page. Pages that are missing, fail
// to decode or panic inside the parser are reported as not ok.
func (r *Reader) pageText(pdfReader *pdf.Reader, pageNum int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return "", false
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return content, true
}
