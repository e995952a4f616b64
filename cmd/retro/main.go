package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"retrocli/internal/config"
	"retrocli/internal/exporter"
	"retrocli/internal/files"
	"retrocli/internal/infrastructure"
	"retrocli/internal/services"
	"retrocli/internal/validation"
	"retrocli/pkg/contracts/domain"
)

func main() {
	dir := flag.String("dir", "", "directory containing retrospective CSV exports (*.csv)")
	minVotes := flag.Int("min", 0, "minimum vote count, inclusive")
	maxVotes := flag.Int("max", 10000, "maximum vote count, inclusive")
	format := flag.String("format", "csv", "output format: csv | markdown | xlsx")
	out := flag.String("out", "", "output file path (defaults to stdout for csv and markdown)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *minVotes < 0 {
		logger.Error("Invalid vote range", slog.Int("min", *minVotes))
		fmt.Fprintln(os.Stderr, "min votes must not be negative")
		os.Exit(2)
	}
	if *maxVotes < *minVotes {
		logger.Error("Invalid vote range",
			slog.Int("min", *minVotes),
			slog.Int("max", *maxVotes))
		fmt.Fprintln(os.Stderr, "max votes must be greater than or equal to min votes")
		os.Exit(2)
	}

	exportFormat, err := exporter.ParseFormat(*format)
	if err != nil {
		logger.Error("Invalid output format", slog.String("format", *format))
		fmt.Fprintf(os.Stderr, "unknown format %q, expected csv, markdown or xlsx\n", *format)
		os.Exit(2)
	}

	sources, err := collectSourceFiles(logger, *dir, flag.Args())
	if err != nil {
		logger.Error("Failed to collect input files", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "no input files: pass CSV paths as arguments or use -dir")
		os.Exit(2)
	}

	if *out != "" {
		if err := validation.NewPathValidator(logger).ValidateOutputPath(*out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger.Info("Starting aggregation",
		slog.Int("files", len(sources)),
		slog.Int("min_votes", *minVotes),
		slog.Int("max_votes", *maxVotes),
		slog.String("format", string(exportFormat)))

	ctx := context.Background()
	service := services.NewAnalysisService(logger)
	report := service.Analyze(ctx, sources, *minVotes, *maxVotes)

	for _, line := range report.Log {
		fmt.Fprintln(os.Stderr, line)
	}
	if report.Message != "" {
		fmt.Fprintln(os.Stderr, report.Message)
	}

	if err := writeOutput(*out, exportFormat, report.Result); err != nil {
		logger.Error("Failed to write output", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("Aggregation complete",
		slog.Int("records", len(report.Result.Records)))
}

// collectSourceFiles merges positional arguments with the CSV exports found
// in dir, positional files first. Aggregation order decides which task id
// wins when several files link the same feedback, so the order here is part
// of the observable behavior.
func collectSourceFiles(logger *slog.Logger, dir string, args []string) ([]domain.SourceFile, error) {
	validator := validation.NewPathValidator(logger)

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if err := validator.ValidateInputFile(arg); err != nil {
			return nil, err
		}
		paths = append(paths, arg)
	}

	if dir != "" {
		if err := validator.ValidateInputDirectory(dir); err != nil {
			return nil, err
		}
		fromDir, err := files.NewDiscovery("").FindCSVExports(dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, fromDir...)
	}

	return files.LoadSourceFiles(paths)
}

func writeOutput(out string, format exporter.Format, result domain.AggregationResult) error {
	if out == "" {
		if format == exporter.FormatXLSX {
			return fmt.Errorf("xlsx output requires -out")
		}
		return exporter.Write(os.Stdout, format, result)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", out, err)
	}
	if err := exporter.Write(f, format, result); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", out, err)
	}
	return f.Close()
}
