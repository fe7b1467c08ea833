package invoice

import (
	"strings"
	"time"

	"github.com/a3tai/awb-proforma/internal/manifest"
	"github.com/a3tai/awb-proforma/internal/waybill"
)

// Invoice is a proforma invoice for one master waybill
type Invoice struct {
	Waybill     waybill.Record
	Manifest    string
	Receiver    []string
	Date        time.Time
	Lines       []Line
	TotalPieces float64
	HAWBCount   int
	TotalValue  float64
}

// New builds the invoice for rec from the manifest rows belonging to it
func New(rec waybill.Record, manifestName string, rows []manifest.Row, receiver []string, date time.Time) *Invoice {
	inv := &Invoice{
		Waybill:  rec,
		Manifest: manifestName,
		Receiver: receiver,
		Date:     date,
		Lines:    Aggregate(rows),
	}

	for _, row := range rows {
		inv.TotalPieces += ParseNumber(row[ColQuantity])
	}
	for _, line := range inv.Lines {
		inv.TotalValue += line.Amount
	}
	inv.HAWBCount = len(inv.Lines)

	return inv
}

// FileName is the archive entry name of the rendered invoice
func (inv *Invoice) FileName() string {
	return inv.Waybill.FileName(".pdf")
}

// Title is used for the document metadata
func (inv *Invoice) Title() string {
	return strings.TrimSpace("Proforma Invoice " + inv.Waybill.AWBNumber)
}
