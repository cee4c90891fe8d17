package types

import (
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
)

// Result is the uniform response of every channel
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Kind    failure.Kind `json:"kind,omitempty"`
}

// OK builds a success result
func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail builds a failure result from err. The message is the classified error
// text; the underlying OS error, if any, goes into Error for diagnostics.
func Fail(err error) Result {
	res := Result{Success: false, Kind: failure.KindOf(err)}
	if err != nil {
		res.Message = err.Error()
		res.Error = failure.Detail(err)
	}
	return res
}

// Failf builds a failure result with an explicit message and kind
func Failf(kind failure.Kind, message string) Result {
	return Result{Success: false, Message: message, Kind: kind}
}
