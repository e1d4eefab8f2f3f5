package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fran-as/millDischargeDashboard/internal/errors"
)

func quietValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{"workbook", writeFile(t, dir, "dataPumps.xlsx"), ""},
		{"macro workbook", writeFile(t, dir, "dataPumps.xlsm"), ""},
		{"lock file", writeFile(t, dir, "~$dataPumps.xlsx"), "temporary Excel file"},
		{"wrong extension", writeFile(t, dir, "dataPumps.txt"), "not an xlsx workbook"},
		{"missing", filepath.Join(dir, "absent.xlsx"), "does not exist"},
		{"directory", func() string {
			p := filepath.Join(dir, "folder.xlsx")
			require.NoError(t, os.Mkdir(p, 0755))
			return p
		}(), "is a directory"},
	}

	v := quietValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExcelFile(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrTypeSource, appErr.Type)
			assert.Equal(t, tt.path, appErr.Context["path"])
		})
	}
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	v := quietValidator()

	assert.NoError(t, v.ValidateCSVFile(writeFile(t, dir, "raw.CSV")))
	assert.Error(t, v.ValidateCSVFile(writeFile(t, dir, "raw.xlsx")))
	assert.Error(t, v.ValidateCSVFile(filepath.Join(dir, "absent.csv")))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := quietValidator()

	nested := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(nested))
	assert.DirExists(t, nested)

	entries, err := os.ReadDir(nested)
	require.NoError(t, err)
	assert.Empty(t, entries, "write test file is removed")

	file := writeFile(t, t.TempDir(), "not-a-dir")
	err = v.ValidateOutputDirectory(file)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
	assert.Equal(t, file, appErr.Context["path"])
}
