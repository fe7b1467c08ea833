package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/awb-proforma/internal/config"
	"github.com/a3tai/awb-proforma/internal/logger"
	"github.com/a3tai/awb-proforma/internal/proforma"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	if version != "dev" {
		cfg.Version = version
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.IsDebug() {
		log.Debug("starting", zap.String("config", cfg.String()))
	}

	// Interrupts stop the run between waybills
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, cfg, log)
	if result != nil {
		printReport(os.Stdout, result)
	}
	if err != nil {
		log.Error("run failed", zap.Error(err))
		log.Sync() //nolint:errcheck
		os.Exit(1)
	}
	fmt.Printf("Archive: %s\n", cfg.OutputPath)
}

// run resolves the inputs, processes them and writes the archive
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*proforma.Result, error) {
	processor, err := proforma.NewProcessor(cfg, log)
	if err != nil {
		return nil, err
	}

	inputs, err := resolveInputs(processor, cfg)
	if err != nil {
		return nil, err
	}
	if len(inputs.PDFs) == 0 {
		return nil, fmt.Errorf("no AWB PDFs found in %s", cfg.InputDir)
	}
	if len(inputs.Manifests) == 0 {
		return nil, fmt.Errorf("no manifests found in %s", cfg.InputDir)
	}

	result, err := processor.Run(ctx, inputs)
	if err != nil {
		return result, err
	}

	if err := processor.WriteArchive(result, cfg.OutputPath); err != nil {
		return result, err
	}
	return result, nil
}

// resolveInputs uses the files named on the command line and fills any empty
// list from the input directory
func resolveInputs(processor *proforma.Processor, cfg *config.Config) (proforma.Inputs, error) {
	inputs := proforma.Inputs{
		PDFs:      cfg.PDFFiles,
		Manifests: cfg.ManifestFiles,
	}
	if len(inputs.PDFs) > 0 && len(inputs.Manifests) > 0 {
		return inputs, nil
	}

	found, err := processor.Discover(cfg.InputDir)
	if err != nil {
		return proforma.Inputs{}, fmt.Errorf("failed to scan input directory: %w", err)
	}
	if len(inputs.PDFs) == 0 {
		inputs.PDFs = found.PDFs
	}
	if len(inputs.Manifests) == 0 {
		inputs.Manifests = found.Manifests
	}
	return inputs, nil
}

// printReport writes a short human readable summary of a run
func printReport(w io.Writer, result *proforma.Result) {
	fmt.Fprintf(w, "Generated %d of %d invoices\n", result.Generated, result.Total)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("AWB Proforma\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
