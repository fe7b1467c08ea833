package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/a3tai/awb-proforma/internal/config"
	"github.com/a3tai/awb-proforma/internal/proforma"
)

const testVersion = "1.2.3"

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done
	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	tests := []struct {
		name     string
		version  string
		build    string
		commit   string
		expected []string
	}{
		{
			name:    "build flags",
			version: testVersion,
			build:   "2023-12-01_10:30:00",
			commit:  "abc123",
			expected: []string{
				"AWB Proforma",
				"Version: " + testVersion,
				"Build Time: 2023-12-01_10:30:00",
				"Git Commit: abc123",
				"Built with:",
			},
		},
		{
			name:    "defaults",
			version: "dev",
			build:   "unknown",
			commit:  "unknown",
			expected: []string{
				"Version: dev",
				"Build Time: unknown",
				"Git Commit: unknown",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, buildTime, gitCommit = tt.version, tt.build, tt.commit

			output := captureStdout(t, printVersion)
			for _, expected := range tt.expected {
				if !strings.Contains(output, expected) {
					t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
				}
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &proforma.Result{
		Total:     3,
		Generated: 2,
		Warnings:  []string{"no matching manifest for 716-11112222"},
	})

	assert.Equal(t, "Generated 2 of 3 invoices\n  warning: no matching manifest for 716-11112222\n", buf.String())
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 10)
	doc.AddPage()
	doc.CellFormat(0, 6, "MAWB 716-12345678", "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "TOTAL: (4) PACKAGES", "", 1, "L", false, 0, "")
	require.NoError(t, doc.OutputFileAndClose(filepath.Join(dir, "awb.pdf")))

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"BX-M-N741", "TrackingNumber", "GoodsDescription", "CommodityTaric", "ItemPackageQuantity", "InvoiceAmountTotal"},
		{"716-12345678", "TRK1", "Bag", "4202", 1, 12},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, "manifest.xlsx")))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	cfg, err := config.Load("awb-proforma", []string{"--dir", dir, "-o", filepath.Join(dir, "out.zip")})
	require.NoError(t, err)

	result, err := run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)

	_, err = os.Stat(filepath.Join(dir, "out.zip"))
	assert.NoError(t, err)
}

func TestRun_ExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	cfg, err := config.Load("awb-proforma", []string{
		filepath.Join(dir, "awb.pdf"),
		filepath.Join(dir, "manifest.xlsx"),
		"--out", filepath.Join(dir, "explicit.zip"),
	})
	require.NoError(t, err)

	result, err := run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Generated)
}

func TestRun_Errors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := config.Load("awb-proforma", []string{"--dir", dir})
		require.NoError(t, err)

		_, err = run(context.Background(), cfg, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no AWB PDFs found")
	})

	t.Run("nothing matched", func(t *testing.T) {
		dir := t.TempDir()
		writeInputs(t, dir)

		cfg, err := config.Load("awb-proforma", []string{"--dir", dir, "--match-column", "Other"})
		require.NoError(t, err)

		result, err := run(context.Background(), cfg, zap.NewNop())
		require.ErrorIs(t, err, proforma.ErrNothingGenerated)
		require.NotNil(t, result)
		assert.Equal(t, 1, result.Total)
	})
}
