// Package summary writes the per-waybill totals workbook of a run.
package summary

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the single summary sheet
const SheetName = "Özet Rapor"

// FileName is the archive entry name of the summary workbook
const FileName = "ozet_rapor.xlsx"

// Headers of the summary sheet, in column order
var Headers = []string{"MAWB No", "Kap Adedi", "KG", "HAWB", "FATURA TOPLAM"}

const moneyFormat = "#,##0.00"

// Row holds the totals of one master waybill
type Row struct {
	MAWB         string  `json:"mawb"`
	Packages     int     `json:"packages"`
	Weight       int     `json:"weight"`
	HAWB         int     `json:"hawb"`
	InvoiceTotal float64 `json:"invoice_total"`
}

// Build renders rows into an xlsx workbook
func Build(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	intStyle, err := f.NewStyle(&excelize.Style{NumFmt: 1, Border: border})
	if err != nil {
		return nil, fmt.Errorf("failed to create integer style: %w", err)
	}

	format := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format, Border: border})
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	for col, header := range Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", header, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header %s: %w", header, err)
		}
	}

	for i, row := range rows {
		line := i + 2
		values := []any{row.MAWB, row.Packages, row.Weight, row.HAWB, row.InvoiceTotal}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, line)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", cell, err)
			}
			style := intStyle
			if col == len(values)-1 {
				style = moneyStyle
			}
			if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
				return nil, fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		return nil, fmt.Errorf("failed to size column A: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "E", 15); err != nil {
		return nil, fmt.Errorf("failed to size columns B:E: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write summary workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
