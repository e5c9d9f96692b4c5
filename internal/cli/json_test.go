package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vu1/internal/errors"
)

func TestErrorToJSON(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))

	structured := errors.New(errors.ErrDial, "No dials", "Plug them in")
	got := ErrorToJSON(fmt.Errorf("wrapped: %w", structured))
	assert.Equal(t, &JSONError{Code: errors.ErrDial, Message: "No dials", Suggestion: "Plug them in"}, got)

	got = ErrorToJSON(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeUnknown, got.Code)
	assert.Equal(t, "boom", got.Message)
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONFromError(&buf, errors.New(errors.ErrLock, "Lock is corrupt", "")))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrLock, env.Error.Code)
}
