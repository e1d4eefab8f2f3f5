package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("open data/dataPumps.xlsx: no such file")
	err := NewSourceError("failed to read workbook", cause).WithContext("path", "data/dataPumps.xlsx")

	assert.Equal(t, "[SOURCE] failed to read workbook: open data/dataPumps.xlsx: no such file", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "data/dataPumps.xlsx", err.Context["path"])

	wrapped := fmt.Errorf("extract: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeSource, appErr.Type)

	_, ok = AsAppError(cause)
	assert.False(t, ok)

	assert.Equal(t, "[CONFIG] bad port", NewConfigError("bad port", nil).Error())
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(404, TypeUnknownGroup, "Unknown Pump Group", "pump9", "/api/pumps/pump9").
		WithExtension("trace_id", "abc").
		WithExtension("type", "ignored")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeUnknownGroup, got["type"], "standard members win over extensions")
	assert.Equal(t, "abc", got["trace_id"])
	assert.Equal(t, "pump9", got["detail"])

	empty, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(empty), "detail")
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "x", Message: "x is required"}})
	assert.Equal(t, 400, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.Len(t, err.Details.(ValidationErrors).Errors, 1)
}
