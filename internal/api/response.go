package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mangadventure/internal/provider/mangadventure"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithProviderError maps a provider failure onto a status code.
// Upstream failures are 502 except a remote 404, which passes through.
// Anything untyped was rejected before reaching the network.
func respondWithProviderError(w http.ResponseWriter, err error) {
	RespondWithError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		remote    *mangadventure.RemoteError
		decode    *mangadventure.DecodeError
		transport *mangadventure.TransportError
	)
	switch {
	case errors.As(err, &remote):
		if remote.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &decode), errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
