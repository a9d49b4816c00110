package agent

import loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"

// Option configures optional runtime dependencies for Conversation.
type Option func(*conversationDeps)

type conversationDeps struct {
	logger  loggerpkg.Logger
	verbose bool
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *conversationDeps) {
		d.logger = l
	}
}

// WithVerbose enables debug logging of each turn.
func WithVerbose(verbose bool) Option {
	return func(d *conversationDeps) {
		d.verbose = verbose
	}
}
