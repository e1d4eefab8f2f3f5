package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, SourceXLSX, cfg.Source.Kind)
				assert.Equal(t, "dataPumps.xlsx", cfg.Paths.InputFile)
				assert.Equal(t, "processed_pumps.csv", cfg.Paths.OutputFile)
				assert.False(t, cfg.Export.Parquet)
			},
		},
		{
			name: "file overrides defaults",
			file: "server:\n  port: 9090\nlogging:\n  level: debug\nexport:\n  parquet: true\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.True(t, cfg.Export.Parquet)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "keys absent from the file keep defaults")
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"PUMPS_SERVER_PORT":              "7070",
				"PUMPS_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"PUMPS_PATHS_DATA_DIR":           "/srv/pumps",
				"PUMPS_WEBSOCKET_PING_PERIOD":    "5s",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "/srv/pumps", cfg.Paths.DataDir)
				assert.Equal(t, 5*time.Second, cfg.WebSocket.PingPeriod)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"PUMPS_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"PUMPS_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "unknown source kind",
			file:    "source:\n  kind: ftp\n",
			wantErr: true,
		},
		{
			name:    "sheets without spreadsheet id",
			env:     map[string]string{"PUMPS_SOURCE_KIND": "sheets"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"PUMPS_LOGGING_LEVEL": "chatty"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeYAML(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base

	paths, err := cfg.Resolve()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "dataPumps.xlsx"), paths.InputFile)
	assert.Equal(t, filepath.Join(base, "data", "processed_pumps.csv"), paths.OutputFile)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)

	require.NoError(t, paths.EnsureDirectories())
	info, err := os.Stat(paths.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveKeepsAbsolutePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.OutputFile = "/var/lib/pumps/out.csv"

	paths, err := cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pumps/out.csv", paths.OutputFile)
}
