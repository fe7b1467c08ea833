package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	tests := []struct {
		name        string
		maxFileSize int64
	}{
		{name: "standard max file size", maxFileSize: 100 * 1024 * 1024},
		{name: "small max file size", maxFileSize: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewReader(tt.maxFileSize)
			if got.maxFileSize != tt.maxFileSize {
				t.Errorf("NewReader() maxFileSize = %v, want %v", got.maxFileSize, tt.maxFileSize)
			}
			if got.maxTextSize != 10*1024*1024 {
				t.Errorf("NewReader() maxTextSize = %v, want %v", got.maxTextSize, 10*1024*1024)
			}
		})
	}
}

func TestReader_ReadFile(t *testing.T) {
	tempDir := t.TempDir()

	pdfPath := writeTestPDF(t, tempDir, "awb.pdf",
		[]string{"MAWB 716-12345678", "TOTAL: (12) PACKAGES"},
		[]string{"MAWB 716-87654321"},
	)
	txtPath := writeFile(t, tempDir, "notes.pdf", []byte("This is not a PDF"))
	dirPath := filepath.Join(tempDir, "folder.pdf")
	require.NoError(t, os.Mkdir(dirPath, 0o755))

	reader := NewReader(10 * 1024 * 1024)

	t.Run("reads every page", func(t *testing.T) {
		doc, err := reader.ReadFile(pdfPath)
		require.NoError(t, err)

		assert.Equal(t, "awb.pdf", doc.Name)
		assert.Equal(t, 2, doc.PageCount)
		require.Len(t, doc.Pages, 2)
		assert.Equal(t, 1, doc.Pages[0].Number)
		assert.Contains(t, doc.Pages[0].Text, "716-12345678")
		assert.Contains(t, doc.Pages[0].Text, "TOTAL: (12) PACKAGES")
		assert.Equal(t, 2, doc.Pages[1].Number)
		assert.Contains(t, doc.Pages[1].Text, "716-87654321")
		assert.Zero(t, doc.PagesSkipped)
	})

	errorCases := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "empty path", path: "", wantErr: "path cannot be empty"},
		{name: "missing file", path: filepath.Join(tempDir, "missing.pdf"), wantErr: "does not exist"},
		{name: "directory", path: dirPath, wantErr: "is a directory"},
		{name: "not a pdf", path: txtPath, wantErr: "failed to open PDF"},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadFile(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("too large", func(t *testing.T) {
		small := NewReader(16)
		_, err := small.ReadFile(pdfPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file too large")
	})
}

func TestReader_Read(t *testing.T) {
	tempDir := t.TempDir()
	pdfPath := writeTestPDF(t, tempDir, "upload.pdf", []string{"716-11112222"})

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)

	reader := NewReader(10 * 1024 * 1024)
	doc, err := reader.Read("uploads/upload.pdf", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "upload.pdf", doc.Name)
	assert.Equal(t, int64(len(data)), doc.Size)
	require.Len(t, doc.Pages, 1)
	assert.Contains(t, doc.Pages[0].Text, "716-11112222")

	_, err = NewReader(8).Read("upload.pdf", bytes.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")

	_, err = reader.Read("junk.pdf", bytes.NewReader([]byte("%PDF-garbage")))
	assert.Error(t, err)
}
