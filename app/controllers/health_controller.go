package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/rocketcart/pkg/logger"
	"github.com/shashiranjanraj/rocketcart/pkg/response"
)

// Pinger reports whether a dependency answers.
type Pinger func(ctx context.Context) error

type HealthController struct {
	ping Pinger
}

func NewHealthController(ping Pinger) *HealthController {
	return &HealthController{ping: ping}
}

// Show answers GET /healthz with 200 while the database answers, 503 after.
func (c *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Warn("health: database ping failed", "error", err)
		response.Failure(w, http.StatusServiceUnavailable)
		return
	}
	response.OK(w)
}
