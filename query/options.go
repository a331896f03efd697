package query

import (
	"time"

	"github.com/0xkowalskidev/mcserverlist/protocol"
	"github.com/0xkowalskidev/mcserverlist/resolve"
)

// Options configures how probes are performed.
type Options struct {
	// ConnectTimeout bounds each racing TCP connect attempt.
	ConnectTimeout time.Duration
	// StepTimeout bounds each protocol read or write.
	StepTimeout time.Duration
	// ForceIPv4 drops IPv6 candidates during resolution.
	ForceIPv4 bool
	// Resolver overrides candidate resolution. Nil builds one from
	// ForceIPv4 with system DNS.
	Resolver *resolve.Resolver
	// Dialer overrides TCP dialing in the connect race.
	Dialer resolve.ContextDialer
}

// Option is a functional option for configuring probes
type Option func(*Options)

// DefaultOptions returns default probe options
func DefaultOptions() *Options {
	return &Options{
		ConnectTimeout: resolve.DefaultConnectTimeout,
		StepTimeout:    protocol.DefaultStepTimeout,
	}
}

// ConnectTimeout sets the per-attempt TCP connect timeout
func ConnectTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ConnectTimeout = d
	}
}

// StepTimeout sets the per-step protocol I/O timeout
func StepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// ForceIPv4 restricts resolution to IPv4 addresses
func ForceIPv4() Option {
	return func(o *Options) {
		o.ForceIPv4 = true
	}
}

// WithResolver overrides the candidate resolver
func WithResolver(r *resolve.Resolver) Option {
	return func(o *Options) {
		o.Resolver = r
	}
}

// WithDialer overrides the TCP dialer used by the connect race
func WithDialer(d resolve.ContextDialer) Option {
	return func(o *Options) {
		o.Dialer = d
	}
}
