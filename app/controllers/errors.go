package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/response"
)

// statuses maps domain errors to HTTP status codes. Order matters only for
// errors matching several entries, which none do today.
var statuses = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrEmptyCart, http.StatusUnprocessableEntity},
	{services.ErrInvariant, http.StatusServiceUnavailable},
}

// StatusFor returns the status for err, 500 when err is not a domain error.
func StatusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// fail writes the failure body for err. Invariant and unclassified errors
// are logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	log := logger.WithCtx(r.Context())

	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", "error", err)
		response.InternalError(w)
		return
	case http.StatusServiceUnavailable:
		log.Error("cart invariant violated", "error", err)
	default:
		log.Debug("request rejected", "error", err, "status", status)
	}
	response.Failure(w, status)
}
