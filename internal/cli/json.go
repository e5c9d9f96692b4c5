package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/vu1/internal/errors"
)

// JSONEnvelope wraps --json output in a consistent structure.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError is the machine-readable form of a failure.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ErrCodeUnknown marks errors that carry no structured code.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to w.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError writes err as a failed response to w.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts err to a JSONError, keeping the structured code
// when there is one.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var vuErr *errors.Error
	if stderrors.As(err, &vuErr) {
		return &JSONError{
			Code:       vuErr.Code,
			Message:    vuErr.Message,
			Suggestion: vuErr.Suggestion,
		}
	}

	return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
}
