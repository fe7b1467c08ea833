package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAWB(t *testing.T, dir string, lines ...string) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 10)
	doc.AddPage()
	for _, line := range lines {
		doc.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	path := filepath.Join(dir, "awb.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		format  string
		files   []string
		wantErr bool
	}{
		{name: "defaults", args: []string{"a.pdf"}, format: "text", files: []string{"a.pdf"}},
		{name: "json", args: []string{"--format", "json", "a.pdf", "b.pdf"}, format: "json", files: []string{"a.pdf", "b.pdf"}},
		{name: "bad format", args: []string{"--format", "xml"}, wantErr: true},
		{name: "unknown flag", args: []string{"--nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, files, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, opts.format)
			assert.Equal(t, tt.files, files)
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	path := writeAWB(t, dir, "MAWB 716-12345678", "TOTAL: (7) PACKAGES")

	opts, _, err := parseFlags(nil)
	require.NoError(t, err)

	results, err := scan(opts, []string{path, filepath.Join(dir, "missing.pdf")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.Equal(t, 1, results[0].PageCount)
	require.Len(t, results[0].Records, 1)
	assert.Equal(t, "716-12345678", results[0].Records[0].AWBNumber)
	assert.Equal(t, 7, results[0].Records[0].PackageCount())

	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, outputResults(&buf, opts, results))
		assert.Contains(t, buf.String(), "[page 1] 716-12345678")
		assert.Contains(t, buf.String(), "Packages: 7")
		assert.Contains(t, buf.String(), "Gross weight: -")
		assert.Contains(t, buf.String(), "failed:")
	})

	t.Run("json", func(t *testing.T) {
		opts.format = "json"
		var buf bytes.Buffer
		require.NoError(t, outputResults(&buf, opts, results))

		var decoded []FileResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "716-12345678", decoded[0].Records[0].AWBNumber)
		assert.Empty(t, decoded[0].Records[0].Text)
	})
}

func TestScan_InvalidPattern(t *testing.T) {
	opts, _, err := parseFlags([]string{"--awb-pattern", "716-[0-9"})
	require.NoError(t, err)

	_, err = scan(opts, nil)
	assert.Error(t, err)
}
