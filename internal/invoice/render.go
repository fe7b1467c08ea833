package invoice

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/mozillazg/go-unidecode"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	fontFamily = "Helvetica"

	// Page margins in mm
	marginLeft   = 2.54
	marginTop    = 5.08
	marginRight  = 2.54
	marginBottom = 2.54

	headerFontSize = 7.0
	bodyFontSize   = 6.5
	blockFontSize  = 9.0
)

var (
	tableHeaders = []string{"TrackingNumber", "GoodsDescription", "HS Code", "Quantity", "Total Value (EUR)"}
	columnWidths = []float64{25, 102, 117, 18, 24}
	bodyAligns   = []string{"C", "L", "C", "C", "C"}
)

// Renderer draws invoices as A4 landscape PDF documents
type Renderer struct {
	logger  *zap.Logger
	printer *message.Printer
}

// NewRenderer creates an invoice renderer
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// Render returns the invoice as PDF bytes
func (r *Renderer) Render(inv *Invoice) ([]byte, error) {
	r.logger.Debug("rendering invoice",
		zap.String("awb", inv.Waybill.AWBNumber),
		zap.Int("lines", len(inv.Lines)))

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, marginBottom)
	doc.SetTitle(inv.Title(), true)
	doc.SetCreator("awb-proforma", true)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	ascii := func(s string) string { return tr(unidecode.Unidecode(s)) }

	doc.SetFont(fontFamily, "B", 16)
	doc.CellFormat(0, 9, "PROFORMA INVOICE", "", 1, "L", false, 0, "")

	doc.SetFont(fontFamily, "", blockFontSize)
	sender := []string{"Sender", inv.Waybill.SenderName, inv.Waybill.SenderAddress}
	doc.MultiCell(0, 4.5, ascii(strings.Join(sender, "\n")), "", "L", false)
	doc.Ln(2)

	receiver := append([]string{"Receiver"}, inv.Receiver...)
	doc.MultiCell(0, 4.5, ascii(strings.Join(receiver, "\n")), "", "L", false)
	doc.Ln(2)

	doc.CellFormat(0, 5, "Tarih / Date: "+inv.Date.Format("2006-01-02"), "", 1, "L", false, 0, "")
	doc.Ln(2)

	t := &table{doc: doc}
	t.header()
	for _, line := range inv.Lines {
		t.row([]string{
			ascii(line.TrackingNumber),
			ascii(line.GoodsDescription),
			ascii(line.CommodityTaric),
			fmt.Sprintf("%d", int64(line.Quantity)),
			fmt.Sprintf("%.2f", line.Amount),
		})
	}

	doc.Ln(4)
	doc.SetFont(fontFamily, "B", bodyFontSize)
	footer := []string{
		fmt.Sprintf("TOTAL KAP: %d      %d kg", inv.Waybill.PackageCount(), inv.Waybill.Weight()),
		fmt.Sprintf("MAWB NO : %s", inv.Waybill.AWBNumber),
		fmt.Sprintf("TOTAL PCS: %d", int64(inv.TotalPieces)),
		fmt.Sprintf("HAWB: %d", inv.HAWBCount),
	}
	for _, line := range footer {
		doc.CellFormat(0, 3.5, tr(line), "", 1, "L", false, 0, "")
	}

	doc.CellFormat(0, 4, tr(fmt.Sprintf("TOPLAM     %s €", r.FormatMoney(inv.TotalValue))), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		r.logger.Error("failed to render invoice", zap.String("awb", inv.Waybill.AWBNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.Waybill.AWBNumber, err)
	}

	return buf.Bytes(), nil
}

// FormatMoney formats v with thousands separators and two decimals
func (r *Renderer) FormatMoney(v float64) string {
	return r.printer.Sprintf("%.2f", v)
}

// table draws a bordered grid whose rows grow to fit wrapped text and whose
// header repeats after a page break
type table struct {
	doc *fpdf.Fpdf
}

func (t *table) header() {
	t.doc.SetFont(fontFamily, "", headerFontSize)
	t.doc.SetFillColor(230, 230, 230)
	t.draw(tableHeaders, []string{"C", "C", "C", "C", "C"}, headerFontSize, true)
}

func (t *table) row(cells []string) {
	t.doc.SetFont(fontFamily, "", bodyFontSize)
	cells = t.clamp(cells, bodyFontSize)
	if t.needsBreak(cells, bodyFontSize) {
		t.doc.AddPage()
		t.header()
		t.doc.SetFont(fontFamily, "", bodyFontSize)
	}
	t.draw(cells, bodyAligns, bodyFontSize, false)
}

// clamp cuts cells whose wrapped text would not fit on one page below the
// header. The last kept line is replaced by "...".
func (t *table) clamp(cells []string, fontSize float64) []string {
	_, pageHeight := t.doc.GetPageSize()
	// Header rows wrap to at most three lines.
	room := pageHeight - marginTop - marginBottom - (3*lineHeight(headerFontSize) + 1) - 2
	maxLines := int((room - 1) / lineHeight(fontSize))

	out := make([]string, len(cells))
	for i, cell := range cells {
		lines := t.doc.SplitText(cell, columnWidths[i]-2)
		if len(lines) > maxLines {
			lines = append(lines[:maxLines-1], "...")
			cell = strings.Join(lines, "\n")
		}
		out[i] = cell
	}
	return out
}

func lineHeight(fontSize float64) float64 {
	return fontSize * 0.45
}

// lineCounts returns the wrapped line count of each cell and the row height
func (t *table) lineCounts(cells []string, fontSize float64) ([]int, float64) {
	counts := make([]int, len(cells))
	maxLines := 1
	for i, cell := range cells {
		n := len(t.doc.SplitText(cell, columnWidths[i]-2))
		if n < 1 {
			n = 1
		}
		counts[i] = n
		if n > maxLines {
			maxLines = n
		}
	}
	return counts, float64(maxLines)*lineHeight(fontSize) + 1
}

func (t *table) needsBreak(cells []string, fontSize float64) bool {
	_, height := t.lineCounts(cells, fontSize)
	_, pageHeight := t.doc.GetPageSize()
	return t.doc.GetY()+height > pageHeight-marginBottom
}

func (t *table) draw(cells, aligns []string, fontSize float64, fill bool) {
	counts, height := t.lineCounts(cells, fontSize)
	lh := lineHeight(fontSize)

	style := "D"
	if fill {
		style = "FD"
	}

	x, y := t.doc.GetXY()
	left := x
	for i, cell := range cells {
		w := columnWidths[i]
		t.doc.Rect(x, y, w, height, style)

		offset := (height - float64(counts[i])*lh) / 2
		t.doc.SetXY(x+1, y+offset)
		t.doc.MultiCell(w-2, lh, cell, "", aligns[i], false)

		x += w
	}
	t.doc.SetXY(left, y+height)
}
