package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/blockgatepay/gateway/internal/application"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(SuccessResponse{ //nolint:errcheck
		Success: true,
		Data:    data,
	})
}

// WriteError maps application errors to HTTP responses. The wrapped cause is
// logged, never serialized: authentication and signature failures in
// particular must stay indistinguishable to the caller.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		svcErr = application.NewInternalError(err)
	}

	if svcErr.Err != nil {
		logger.Error("request failed",
			"code", svcErr.Code,
			"error", svcErr.Err,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus)
	json.NewEncoder(w).Encode(ErrorResponse{ //nolint:errcheck
		Success: false,
		Error: ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		},
	})
}
