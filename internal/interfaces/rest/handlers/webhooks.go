package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/interfaces/rest"
)

const signatureHeader = "X-Processor-Signature"

// ProcessorWebhook receives asynchronous status callbacks. Trust is
// established solely by the signature over the raw body; once the event is
// verified and applied (or ignored as a stale delivery), the processor gets
// a 200 so it stops retrying.
func (h *Handlers) ProcessorWebhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	if err := h.webhookService.HandleEvent(r.Context(), rawBody, r.Header.Get(signatureHeader)); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
