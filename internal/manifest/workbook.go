// Package manifest reads shipment manifests and matches them to waybills.
package manifest

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Row maps a manifest column name to its cell value
type Row map[string]string

// Workbook is the first sheet of a manifest, read as strings
type Workbook struct {
	Name    string
	Sheet   string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header row contains name
func (w *Workbook) HasColumn(name string) bool {
	for _, c := range w.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Contains reports whether any row holds value in column. Both sides are
// compared with surrounding whitespace removed.
func (w *Workbook) Contains(column, value string) bool {
	if !w.HasColumn(column) {
		return false
	}
	value = strings.TrimSpace(value)
	for _, row := range w.Rows {
		if strings.TrimSpace(row[column]) == value {
			return true
		}
	}
	return false
}

// RowsFor returns the rows whose column holds value, compared as in Contains
func (w *Workbook) RowsFor(column, value string) []Row {
	if !w.HasColumn(column) {
		return nil
	}
	value = strings.TrimSpace(value)
	var rows []Row
	for _, row := range w.Rows {
		if strings.TrimSpace(row[column]) == value {
			rows = append(rows, row)
		}
	}
	return rows
}

// Normalize returns a copy of w with the values of the given columns
// transliterated to ASCII. Other columns are copied unchanged.
func (w *Workbook) Normalize(columns ...string) *Workbook {
	targets := make(map[string]bool, len(columns))
	for _, c := range columns {
		targets[c] = true
	}

	out := &Workbook{
		Name:    w.Name,
		Sheet:   w.Sheet,
		Columns: append([]string(nil), w.Columns...),
		Rows:    make([]Row, len(w.Rows)),
	}
	for i, row := range w.Rows {
		copied := make(Row, len(row))
		for k, v := range row {
			if targets[k] {
				v = unidecode.Unidecode(v)
			}
			copied[k] = v
		}
		out.Rows[i] = copied
	}
	return out
}

// Match returns the first workbook whose column contains the waybill number,
// or nil when none does.
func Match(workbooks []*Workbook, column, awb string) *Workbook {
	for _, wb := range workbooks {
		if wb != nil && wb.Contains(column, awb) {
			return wb
		}
	}
	return nil
}
