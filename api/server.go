package api

import (
	"net/http"
	"time"

	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
)

// NewServer wraps handler in an http.Server bound to the configured port.
// port overrides cfg.App.Port when set, as platform-assigned PORT values do.
func NewServer(cfg *config.Config, port string, handler http.Handler) *http.Server {
	if port == "" {
		port = cfg.App.Port
	}
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
