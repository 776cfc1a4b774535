package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the callable gateway. WriteTimeout must stay above
// the passcode failure floor plus the slowest registration step.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
