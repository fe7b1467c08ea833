package pdf

// FileKind classifies an input file discovered for a run
type FileKind string

const (
	KindPDF      FileKind = "pdf"
	KindManifest FileKind = "manifest"
)

// FileInfo represents information about an input file
type FileInfo struct {
	Path         string   `json:"path"`
	Name         string   `json:"name"`
	Kind         FileKind `json:"kind"`
	Size         int64    `json:"size"`
	ModifiedTime string   `json:"modified_time"`
}

// Inputs are the files discovered in an input directory, sorted by name
type Inputs struct {
	Directory string     `json:"directory"`
	PDFs      []FileInfo `json:"pdfs"`
	Manifests []FileInfo `json:"manifests"`
}

// PageText is the plain text of one PDF page. Number is 1-based.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is the extracted text of a PDF, page by page
type Document struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	Size         int64      `json:"size"`
	PageCount    int        `json:"page_count"`
	Pages        []PageText `json:"pages"`
	PagesSkipped int        `json:"pages_skipped,omitempty"`
}
