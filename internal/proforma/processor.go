// Package proforma runs the waybill to invoice pipeline: extract waybills
// from AWB PDFs, match them against manifests, render one invoice per
// waybill and package everything with a summary workbook.
package proforma

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/awb-proforma/internal/archive"
	"github.com/a3tai/awb-proforma/internal/config"
	"github.com/a3tai/awb-proforma/internal/invoice"
	"github.com/a3tai/awb-proforma/internal/manifest"
	"github.com/a3tai/awb-proforma/internal/pdf"
	"github.com/a3tai/awb-proforma/internal/summary"
	"github.com/a3tai/awb-proforma/internal/waybill"
)

// ErrNothingGenerated is returned when a run produces no invoice
var ErrNothingGenerated = errors.New("no invoices generated")

const archiveMode os.FileMode = 0o644

// Inputs are the files of one run
type Inputs struct {
	PDFs      []string
	Manifests []string
}

// Document is a rendered invoice
type Document struct {
	Name     string
	AWB      string
	Manifest string
	Data     []byte
}

// Result is the outcome of Run
type Result struct {
	RunID     string
	Documents []Document
	Summary   []summary.Row
	Warnings  []string
	Total     int
	Generated int
}

// ProgressFunc is called before each waybill is processed
type ProgressFunc func(current, total int, awb string)

// Processor holds the components of the pipeline
type Processor struct {
	pdfs        *pdf.Service
	extractor   *waybill.Extractor
	loader      *manifest.Loader
	renderer    *invoice.Renderer
	matchColumn string
	receiver    []string
	logger      *zap.Logger

	// Now stamps invoice dates. Defaults to time.Now.
	Now func() time.Time
	// OnProgress is optional
	OnProgress ProgressFunc
}

// NewProcessor wires the pipeline from configuration
func NewProcessor(cfg *config.Config, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	extractor, err := waybill.NewExtractor(cfg.AWBPattern, cfg.SenderPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create waybill extractor: %w", err)
	}

	return &Processor{
		pdfs:        pdf.NewService(cfg.MaxFileSize),
		extractor:   extractor,
		loader:      manifest.NewLoader(cfg.ManifestPassword, logger),
		renderer:    invoice.NewRenderer(logger),
		matchColumn: cfg.MatchColumn,
		receiver:    cfg.Receiver,
		logger:      logger,
		Now:         time.Now,
	}, nil
}

// Discover lists the PDFs and manifests of an input directory
func (p *Processor) Discover(directory string) (Inputs, error) {
	found, err := p.pdfs.FindInputs(directory)
	if err != nil {
		return Inputs{}, err
	}

	var in Inputs
	for _, f := range found.PDFs {
		in.PDFs = append(in.PDFs, f.Path)
	}
	for _, f := range found.Manifests {
		in.Manifests = append(in.Manifests, f.Path)
	}
	return in, nil
}

// Run extracts, matches and renders every waybill in the inputs. Files and
// waybills that fail are skipped and reported in Result.Warnings.
func (p *Processor) Run(ctx context.Context, in Inputs) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With(zap.String("run_id", result.RunID))

	records := p.extractAll(ctx, logger, in.PDFs, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workbooks := p.loadAll(logger, in.Manifests, result)
	result.Total = len(records)

	logger.Info("inputs loaded",
		zap.Int("pdfs", len(in.PDFs)),
		zap.Int("manifests", len(workbooks)),
		zap.Int("waybills", len(records)))

	done := make(map[string]bool)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := i + 1
		logger.Info("processing waybill",
			zap.String("awb", rec.AWBNumber),
			zap.Int("current", current),
			zap.Int("total", result.Total))
		if p.OnProgress != nil {
			p.OnProgress(current, result.Total, rec.AWBNumber)
		}

		if done[rec.AWBNumber] {
			p.warn(logger, result, "duplicate waybill skipped: %s (%s page %d)",
				rec.AWBNumber, rec.SourceFile, rec.PageNumber)
			continue
		}

		doc, row, err := p.build(rec, workbooks)
		if err != nil {
			p.warn(logger, result, "%v", err)
			continue
		}

		done[rec.AWBNumber] = true
		result.Documents = append(result.Documents, *doc)
		result.Summary = append(result.Summary, *row)
	}

	result.Generated = len(result.Documents)
	if result.Generated == 0 {
		return result, ErrNothingGenerated
	}

	logger.Info("invoices generated",
		zap.Int("generated", result.Generated),
		zap.Int("total", result.Total),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// build matches one waybill and renders its invoice
func (p *Processor) build(rec waybill.Record, workbooks []*manifest.Workbook) (*Document, *summary.Row, error) {
	wb := manifest.Match(workbooks, p.matchColumn, rec.AWBNumber)
	if wb == nil {
		return nil, nil, fmt.Errorf("no matching manifest for %s", rec.AWBNumber)
	}

	rows := wb.Normalize(invoice.TextColumns...).RowsFor(p.matchColumn, rec.AWBNumber)
	inv := invoice.New(rec, wb.Name, rows, p.receiver, p.Now())

	data, err := p.renderer.Render(inv)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Debug("invoice rendered",
		zap.String("awb", rec.AWBNumber),
		zap.String("manifest", wb.Name),
		zap.Int("hawb", inv.HAWBCount),
		zap.Float64("total", inv.TotalValue))

	doc := &Document{
		Name:     inv.FileName(),
		AWB:      rec.AWBNumber,
		Manifest: wb.Name,
		Data:     data,
	}
	row := &summary.Row{
		MAWB:         rec.AWBNumber,
		Packages:     rec.PackageCount(),
		Weight:       rec.Weight(),
		HAWB:         inv.HAWBCount,
		InvoiceTotal: inv.TotalValue,
	}
	return doc, row, nil
}

func (p *Processor) extractAll(ctx context.Context, logger *zap.Logger, paths []string, result *Result) []waybill.Record {
	var records []waybill.Record
	for _, path := range paths {
		if ctx.Err() != nil {
			return records
		}

		doc, err := p.pdfs.ExtractFile(path)
		if err != nil {
			p.warn(logger, result, "skipping PDF %s: %v", filepath.Base(path), err)
			continue
		}
		if doc.PagesSkipped > 0 {
			logger.Debug("unreadable pages skipped",
				zap.String("pdf", doc.Name),
				zap.Int("skipped", doc.PagesSkipped))
		}

		found := p.extractor.ExtractDocument(doc)
		if len(found) == 0 {
			p.warn(logger, result, "no waybill numbers found in %s", doc.Name)
			continue
		}
		records = append(records, found...)
	}
	return records
}

func (p *Processor) loadAll(logger *zap.Logger, paths []string, result *Result) []*manifest.Workbook {
	var workbooks []*manifest.Workbook
	for _, path := range paths {
		wb, err := p.loader.Load(path)
		if err != nil {
			p.warn(logger, result, "skipping manifest %s: %v", filepath.Base(path), err)
			continue
		}
		if !wb.HasColumn(p.matchColumn) {
			logger.Debug("manifest lacks match column",
				zap.String("manifest", wb.Name),
				zap.String("column", p.matchColumn))
		}
		workbooks = append(workbooks, wb)
	}
	return workbooks
}

func (p *Processor) warn(logger *zap.Logger, result *Result, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	logger.Warn(msg)
}

// Package writes the invoices of result and its summary workbook to w as a
// zip archive
func (p *Processor) Package(result *Result, w io.Writer) error {
	summaryData, err := summary.Build(result.Summary)
	if err != nil {
		return err
	}

	zw, err := archive.NewWriter(w, "awb-proforma run "+result.RunID, p.logger)
	if err != nil {
		return err
	}

	modified := p.Now()
	for _, doc := range result.Documents {
		if _, err := zw.Add(doc.Name, doc.Data, modified); err != nil {
			return err
		}
	}
	if _, err := zw.Add(summary.FileName, summaryData, modified); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	p.logger.Info("archive packaged",
		zap.String("run_id", result.RunID),
		zap.Strings("entries", zw.Entries()))
	return nil
}

// WriteArchive packages result into the file at path. The archive is written
// to a temporary file in the same directory and renamed into place.
func (p *Processor) WriteArchive(result *Result, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".awb-proforma-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := p.Package(result, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	// CreateTemp makes the file owner-only
	if err := os.Chmod(tmpName, archiveMode); err != nil {
		return fmt.Errorf("failed to set archive permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	p.logger.Info("archive written",
		zap.String("path", path),
		zap.String("run_id", result.RunID),
		zap.Int("invoices", len(result.Documents)))
	return nil
}
