// Package waybill pulls master air waybill records out of AWB page text.
package waybill

import "strings"

// Record is the shipment data found for one waybill number on one page.
// Optional numeric fields are nil when the page did not carry them.
type Record struct {
	AWBNumber     string   `json:"awb_number"`
	Packages      *int     `json:"packages,omitempty"`
	GrossWeight   *int     `json:"gross_weight,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	Dimensions    string   `json:"dimensions,omitempty"`
	SenderName    string   `json:"sender_name"`
	SenderAddress string   `json:"sender_address"`
	Text          string   `json:"-"`
	SourceFile    string   `json:"source_file,omitempty"`
	PageNumber    int      `json:"page_number,omitempty"`
}

// PackageCount returns the package count, or 0 when absent
func (r Record) PackageCount() int {
	if r.Packages == nil {
		return 0
	}
	return *r.Packages
}

// Weight returns the gross weight in kg, or 0 when absent
func (r Record) Weight() int {
	if r.GrossWeight == nil {
		return 0
	}
	return *r.GrossWeight
}

// FileName is the invoice file name for the record: the waybill number
// without dashes plus ext.
func (r Record) FileName(ext string) string {
	return strings.ReplaceAll(r.AWBNumber, "-", "") + ext
}
