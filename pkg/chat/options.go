package chat

import (
	"net/http"

	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
)

// Option configures optional runtime dependencies for Client.
type Option func(*clientDeps)

type clientDeps struct {
	logger     loggerpkg.Logger
	httpClient *http.Client
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *clientDeps) {
		d.logger = l
	}
}

// WithHTTPClient overrides the HTTP client used for every attempt.
func WithHTTPClient(c *http.Client) Option {
	return func(d *clientDeps) {
		d.httpClient = c
	}
}
