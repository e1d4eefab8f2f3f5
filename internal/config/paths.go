package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved file system location the application
// touches. All fields are absolute.
type Paths struct {
	BaseDir         string
	DataDir         string
	LogsDir         string
	InputFile       string
	OutputFile      string
	ParquetFile     string
	CredentialsFile string
}

// Resolve turns the configured, possibly relative, locations into absolute
// paths. BaseDir defaults to the current working directory.
func (c *Config) Resolve() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := under(base, c.Paths.DataDir)
	return &Paths{
		BaseDir:         base,
		DataDir:         dataDir,
		LogsDir:         under(base, c.Paths.LogsDir),
		InputFile:       under(dataDir, c.Paths.InputFile),
		OutputFile:      under(dataDir, c.Paths.OutputFile),
		ParquetFile:     under(dataDir, c.Paths.ParquetFile),
		CredentialsFile: under(base, c.Source.CredentialsFile),
	}, nil
}

func under(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// EnsureDirectories creates the data and logs directories if needed.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("input_file", p.InputFile),
		slog.String("output_file", p.OutputFile),
		slog.String("parquet_file", p.ParquetFile))
}
