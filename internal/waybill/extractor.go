package waybill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/a3tai/awb-proforma/internal/pdf"
)

var (
	packagesPattern = regexp.MustCompile(`TOTAL\s*:\s*\((\d+)\)\s*PACKAGES`)
	grossPattern    = regexp.MustCompile(`(\d+)\s+K\s+Q\s+\d+\s+`)
	volumePattern   = regexp.MustCompile(`(?i)VOL\s*[:\x{FF1A}]?\s*([\d.]+)CBM`)
	dimsPattern     = regexp.MustCompile(`DIM[:\x{FF1A}]?\s*([0-9* /]+)`)
)

// Extractor finds waybill numbers and their shipment metadata in page text
type Extractor struct {
	awbPattern    *regexp.Regexp
	senderName    *regexp.Regexp
	senderAddress *regexp.Regexp
}

// NewExtractor compiles the waybill number pattern and the sender patterns
// anchored on senderPrefix, the shipper name printed on the AWB.
func NewExtractor(awbPattern, senderPrefix string) (*Extractor, error) {
	if awbPattern == "" {
		return nil, fmt.Errorf("AWB pattern cannot be empty")
	}
	awb, err := regexp.Compile(awbPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid AWB pattern: %w", err)
	}

	e := &Extractor{awbPattern: awb}
	if senderPrefix != "" {
		quoted := regexp.QuoteMeta(senderPrefix)
		e.senderName = regexp.MustCompile(`(` + quoted + `.*?)\s{2,}`)
		e.senderAddress = regexp.MustCompile(`(?s)` + quoted + `\s+(NO\..+?CHINA[\x{FF08}(]?\d{6}[\x{FF09})]?)`)
	}
	return e, nil
}

// ExtractPage returns one record per distinct waybill number on the page, in
// order of first appearance. All records of a page share its metadata.
// Non-ASCII whitespace such as U+3000 and U+00A0 separates tokens like a
// plain space does.
func (e *Extractor) ExtractPage(text string) []Record {
	plain := plainSpaces(text)
	numbers := e.awbNumbers(plain)
	if len(numbers) == 0 {
		return nil
	}

	meta := Record{
		Packages:    matchInt(packagesPattern, plain),
		GrossWeight: matchInt(grossPattern, plain),
		Volume:      matchFloat(volumePattern, plain),
		Dimensions:  strings.TrimSpace(matchString(dimsPattern, plain)),
		Text:        text,
	}
	if e.senderName != nil {
		meta.SenderName = strings.TrimSpace(matchString(e.senderName, plain))
		address := matchString(e.senderAddress, plain)
		meta.SenderAddress = strings.TrimSpace(strings.ReplaceAll(address, "\n", " "))
	}

	records := make([]Record, 0, len(numbers))
	for _, number := range numbers {
		rec := meta
		rec.AWBNumber = number
		records = append(records, rec)
	}
	return records
}

// ExtractDocument runs ExtractPage over every page of doc and tags each
// record with its source file and page number.
func (e *Extractor) ExtractDocument(doc *pdf.Document) []Record {
	var records []Record
	for _, page := range doc.Pages {
		for _, rec := range e.ExtractPage(page.Text) {
			rec.SourceFile = doc.Name
			rec.PageNumber = page.Number
			records = append(records, rec)
		}
	}
	return records
}

func (e *Extractor) awbNumbers(text string) []string {
	matches := e.awbPattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	numbers := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		numbers = append(numbers, m)
	}
	return numbers
}

// plainSpaces maps every non-ASCII space rune to ' ', which the ASCII \s
// class of the patterns matches
func plainSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}

func matchString(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func matchInt(re *regexp.Regexp, text string) *int {
	s := matchString(re, text)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func matchFloat(re *regexp.Regexp, text string) *float64 {
	s := matchString(re, text)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
