package processor

import "fmt"

// ProcessorError is a non-2xx answer from the payment processor.
type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type processorErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
