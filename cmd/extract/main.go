package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fran-as/millDischargeDashboard/internal/config"
	"github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/internal/exporter"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/normalize"
	"github.com/fran-as/millDischargeDashboard/internal/validation"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	var parquet bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Normalize the pump spreadsheet into the canonical CSV",
		Long: `extract reads the raw pump readings (xlsx, csv or a Google Sheets range),
normalizes column names and cell values, sorts rows by date and writes
processed_pumps.csv into the data directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       contracts.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				err = errors.NewConfigError("failed to load configuration", err)
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			if cmd.Flags().Changed("parquet") {
				cfg.Export.Parquet = parquet
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runExtract(ctx, cfg, cmd.OutOrStdout()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "extract failed:", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (defaults to config.yaml lookup)")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "Also write the Parquet copy of the table")
	return cmd
}

func loadConfig(file string) (*config.Config, error) {
	if file == "" {
		return config.Load()
	}
	return config.LoadFrom(file)
}

// runExtract performs one extraction and prints the report summary to out.
func runExtract(ctx context.Context, cfg *config.Config, out io.Writer) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	paths, err := cfg.Resolve()
	if err != nil {
		return errors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return errors.NewStorageError("failed to create directories", err)
	}
	paths.LogPathResolution(logger)

	src, err := sourceFor(cfg.Source, paths)
	if err != nil {
		return err
	}
	if err := validateInputs(validation.NewFileValidator(logger), cfg.Source.Kind, paths); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			logger.ErrorContext(ctx, "input check failed",
				slog.String("type", string(appErr.Type)),
				slog.Any("context", appErr.Context))
		}
		return err
	}

	logger.InfoContext(ctx, "Starting extraction",
		slog.String("source", src.Name()),
		slog.String("output", paths.OutputFile))

	table, report, err := normalize.NewExtractor(logger).Run(ctx, src)
	if err != nil {
		return err
	}

	writer := exporter.NewWriter(logger)
	writer.ExcelBOM = cfg.Export.ExcelBOM
	if err := writer.WriteCanonicalCSV(table, paths.OutputFile); err != nil {
		return errors.NewStorageError("failed to write canonical CSV", err)
	}
	if cfg.Export.Parquet {
		if err := writer.WriteParquet(table, paths.ParquetFile); err != nil {
			return errors.NewStorageError("failed to write parquet", err)
		}
	}

	fmt.Fprint(out, report.Summary())
	fmt.Fprintf(out, "written: %s\n", paths.OutputFile)
	return nil
}

// validateInputs checks the files the chosen source reads and the output
// directory before extraction starts.
func validateInputs(v *validation.FileValidator, kind string, paths *config.Paths) error {
	var err error
	switch kind {
	case config.SourceCSV:
		err = v.ValidateCSVFile(paths.InputFile)
	case config.SourceSheets:
		err = v.ValidateFile(paths.CredentialsFile)
	default:
		err = v.ValidateExcelFile(paths.InputFile)
	}
	if err != nil {
		return err
	}
	return v.ValidateOutputDirectory(filepath.Dir(paths.OutputFile))
}

// sourceFor picks the raw reader for the configured source kind.
func sourceFor(src config.SourceConfig, paths *config.Paths) (normalize.Source, error) {
	switch src.Kind {
	case config.SourceXLSX, "":
		return normalize.ExcelSource{Path: paths.InputFile, Sheet: src.Sheet}, nil
	case config.SourceCSV:
		return normalize.CSVSource{Path: paths.InputFile}, nil
	case config.SourceSheets:
		return normalize.SheetsSource{
			SpreadsheetID:   src.SpreadsheetID,
			Range:           src.Range,
			CredentialsFile: paths.CredentialsFile,
		}, nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown source kind %q", src.Kind), nil)
	}
}
