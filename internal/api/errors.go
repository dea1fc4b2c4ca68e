package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/dal"
	"github.com/guarantor-network/fabric/pkg/dht"
	"github.com/guarantor-network/fabric/pkg/docdiff"
)

// errorResponse is the JSON body returned for any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the §7 error taxonomy, wherever it originates across
// the module's packages, to an HTTP status code. Sentinels this facade
// doesn't recognize fall back to 500: a new package introducing a new
// sentinel without a matching case here is a latent bug, not a silent
// 200.
func statusFor(err error) int {
	switch {
	case errors.Is(err, change.ErrValidation),
		errors.Is(err, docdiff.ErrValidation),
		errors.Is(err, dal.ErrInvalidQuery),
		errors.Is(err, dal.ErrNoAuthoringKey):
		return http.StatusBadRequest
	case errors.Is(err, change.ErrVerification),
		errors.Is(err, changestore.ErrVerification):
		return http.StatusBadRequest
	case errors.Is(err, change.ErrUnsupportedOperation),
		errors.Is(err, docdiff.ErrUnsupportedOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docdiff.ErrUnknownDoctype):
		return http.StatusNotFound
	case errors.Is(err, dal.ErrCorruptChain):
		return http.StatusInternalServerError
	case errors.Is(err, changestore.ErrNotWritable):
		return http.StatusServiceUnavailable
	case errors.Is(err, changestore.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, changestore.ErrStoreIO):
		return http.StatusInternalServerError
	case errors.Is(err, dht.ErrNetwork):
		return http.StatusGatewayTimeout
	case errors.Is(err, dht.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err at the level its status implies and writes the
// mapped JSON error response.
func writeError(w http.ResponseWriter, log hclog.Logger, op string, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.Error(op, "error", err)
	} else {
		log.Warn(op, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
