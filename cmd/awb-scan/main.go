package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/a3tai/awb-proforma/internal/config"
	"github.com/a3tai/awb-proforma/internal/pdf"
	"github.com/a3tai/awb-proforma/internal/waybill"
)

// options are the command line settings of awb-scan
type options struct {
	format      string
	awbPattern  string
	sender      string
	verbose     bool
	maxFileSize int64
	help        bool
}

func main() {
	opts, files, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	if opts.help {
		printHelp()
		return
	}

	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	results, err := scan(opts, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := outputResults(os.Stdout, opts, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, []string, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("awb-scan", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.awbPattern, "awb-pattern", config.DefaultAWBPattern, "Regular expression matching waybill numbers")
	fs.StringVar(&opts.sender, "sender", config.DefaultSenderPrefix, "Shipper name that prefixes the sender block")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Print the page text of every record")
	fs.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum PDF size in bytes")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, nil, fmt.Errorf("unsupported output format: %s", opts.format)
	}
	return opts, fs.Args(), nil
}

func printHelp() {
	fmt.Println("AWB Scan - show the waybill records found in air waybill PDFs")
	fmt.Println()
	fmt.Println("Use it to check what the proforma run will see before matching manifests.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --format          Output format: text (default), json")
	fmt.Println("  --awb-pattern     Waybill number pattern (default 716-\\d{8})")
	fmt.Println("  --sender          Shipper name anchoring the sender block")
	fmt.Println("  --max-file-size   Maximum PDF size in bytes")
	fmt.Println("  -v, --verbose     Print page text")
	fmt.Println("  -h, --help        Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  awb-scan awb.pdf")
	fmt.Println("  awb-scan --format json awbs/*.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  awb-scan [OPTIONS] <pdf_file>...")
}

// FileResult is the scan outcome of one PDF
type FileResult struct {
	FilePath  string           `json:"file_path"`
	Success   bool             `json:"success"`
	PageCount int              `json:"page_count"`
	Records   []waybill.Record `json:"records"`
	Error     string           `json:"error,omitempty"`
}

func scan(opts *options, files []string) ([]FileResult, error) {
	extractor, err := waybill.NewExtractor(opts.awbPattern, opts.sender)
	if err != nil {
		return nil, err
	}
	service := pdf.NewService(opts.maxFileSize)

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		result := FileResult{FilePath: path, Records: []waybill.Record{}}

		doc, err := service.ExtractFile(path)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		result.Success = true
		result.PageCount = doc.PageCount
		result.Records = append(result.Records, extractor.ExtractDocument(doc)...)
		results = append(results, result)
	}
	return results, nil
}

func outputResults(w io.Writer, opts *options, results []FileResult) error {
	switch opts.format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	default:
		outputText(w, opts, results)
		return nil
	}
}

func outputText(w io.Writer, opts *options, results []FileResult) {
	for _, result := range results {
		fmt.Fprintf(w, "%s\n", result.FilePath)
		if !result.Success {
			fmt.Fprintf(w, "  failed: %s\n\n", result.Error)
			continue
		}
		if len(result.Records) == 0 {
			fmt.Fprintf(w, "  no waybill numbers on %d pages\n\n", result.PageCount)
			continue
		}

		for _, rec := range result.Records {
			fmt.Fprintf(w, "  [page %d] %s\n", rec.PageNumber, rec.AWBNumber)
			fmt.Fprintf(w, "    Packages: %s\n", optionalInt(rec.Packages))
			fmt.Fprintf(w, "    Gross weight: %s\n", optionalInt(rec.GrossWeight))
			if rec.Volume != nil {
				fmt.Fprintf(w, "    Volume: %g CBM\n", *rec.Volume)
			}
			if rec.Dimensions != "" {
				fmt.Fprintf(w, "    Dimensions: %s\n", rec.Dimensions)
			}
			if rec.SenderName != "" {
				fmt.Fprintf(w, "    Sender: %s\n", rec.SenderName)
			}
			if rec.SenderAddress != "" {
				fmt.Fprintf(w, "    Address: %s\n", rec.SenderAddress)
			}
			if opts.verbose {
				fmt.Fprintf(w, "    Text: %q\n", rec.Text)
			}
		}
		fmt.Fprintln(w)
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
