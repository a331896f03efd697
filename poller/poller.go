// Package poller maintains two pre-sorted snapshots of server statuses,
// refreshed by a periodic fan-out of concurrent probes.
package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/0xkowalskidev/mcserverlist/config"
	"github.com/0xkowalskidev/mcserverlist/protocol"
	"github.com/0xkowalskidev/mcserverlist/query"
)

const (
	// DefaultInterval separates poll cycles.
	DefaultInterval = 10 * time.Second
	// DefaultRetryInterval is slept after a failed config load.
	DefaultRetryInterval = 10 * time.Second
)

// ProbeFunc performs one status probe. Production wiring uses query.Probe;
// tests substitute their own.
type ProbeFunc func(ctx context.Context, host string, port uint16) (*query.Result, error)

// LoadFunc yields the configured server list. It is called at the start of
// every cycle so edits to the list take effect without a restart.
type LoadFunc func() ([]config.Server, error)

// Config configures a Service. Zero-value fields use defaults.
type Config struct {
	// Load yields the server list each cycle. Required.
	Load LoadFunc
	// Probe runs one status probe. Nil uses query.Probe with opts built
	// from ProbeOptions.
	Probe ProbeFunc
	// ProbeOptions apply when Probe is nil.
	ProbeOptions []query.Option
	// Interval separates poll cycles.
	Interval time.Duration
	// RetryInterval is slept after a failed config load.
	RetryInterval time.Duration
	// MaxConcurrency bounds in-flight probes within a cycle. Zero means
	// unlimited.
	MaxConcurrency int
	// Logger for cycle progress. Nil logs nothing.
	Logger *zap.Logger
}

// Service runs the polling loop and publishes the two sorted snapshots.
//
// The snapshots are the only shared state: readers take the current slice
// under a read lock in O(1) and must treat it as immutable, the poller swaps
// in freshly built slices wholesale. No reader ever observes a half-updated
// cycle, and readers never block each other beyond the swap itself.
type Service struct {
	load           LoadFunc
	probe          ProbeFunc
	interval       time.Duration
	retryInterval  time.Duration
	maxConcurrency int
	log            *zap.Logger
	metrics        *metrics

	mu         sync.RWMutex
	descending []ServerStatus // most players first
	ascending  []ServerStatus // exact reverse of descending
	published  bool
}

// New creates a Service from cfg.
func New(cfg Config) *Service {
	s := &Service{
		load:           cfg.Load,
		probe:          cfg.Probe,
		interval:       cfg.Interval,
		retryInterval:  cfg.RetryInterval,
		maxConcurrency: cfg.MaxConcurrency,
		log:            cfg.Logger,
		metrics:        newMetrics(),
	}
	if s.probe == nil {
		opts := cfg.ProbeOptions
		s.probe = func(ctx context.Context, host string, port uint16) (*query.Result, error) {
			return query.Probe(ctx, host, port, opts...)
		}
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.retryInterval <= 0 {
		s.retryInterval = DefaultRetryInterval
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Run executes poll cycles until ctx is cancelled. Cycles never overlap: the
// next one starts only after the previous published and the interval elapsed.
func (s *Service) Run(ctx context.Context) {
	for {
		servers, err := s.load()
		if err != nil {
			// A bad config load leaves the published snapshots
			// untouched; consumers keep seeing the last good cycle.
			s.log.Warn("failed to load server list, retrying",
				zap.Error(err),
				zap.Duration("retry_in", s.retryInterval))
			if !sleep(ctx, s.retryInterval) {
				return
			}
			continue
		}

		s.log.Info("poll cycle starting", zap.Int("servers", len(servers)))
		cycleStart := time.Now()

		statuses := s.pollAll(ctx, servers)
		if ctx.Err() != nil {
			return
		}
		s.publish(statuses)

		online := 0
		for _, status := range statuses {
			if status.IsOnline {
				online++
			}
		}
		took := time.Since(cycleStart)
		s.metrics.cycleDone(len(servers), online, took)
		s.log.Info("poll cycle complete",
			zap.Int("servers", len(servers)),
			zap.Int("online", online),
			zap.Duration("took", took))

		if !sleep(ctx, s.interval) {
			return
		}
	}
}

// pollAll fans out one probe per configured server, waits for every one to
// terminate, and classifies the outcomes in configured order.
func (s *Service) pollAll(ctx context.Context, servers []config.Server) []ServerStatus {
	results := make([]*query.Result, len(servers))

	var semaphore chan struct{}
	if s.maxConcurrency > 0 {
		semaphore = make(chan struct{}, s.maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, server := range servers {
		wg.Add(1)
		go func(i int, server config.Server) {
			defer wg.Done()
			if semaphore != nil {
				semaphore <- struct{}{}
				defer func() { <-semaphore }()
			}

			result, err := s.probe(ctx, server.IP, server.Port)
			if err != nil {
				s.metrics.probeFailed()
				s.log.Debug("probe failed",
					zap.String("host", server.IP),
					zap.Uint16("port", server.Port),
					zap.Error(err))
				return
			}
			results[i] = result
		}(i, server)
	}
	wg.Wait()

	statuses := make([]ServerStatus, len(servers))
	for i, server := range servers {
		status := ServerStatus{
			IP:          server.IP,
			Icon:        server.Icon,
			Name:        server.Name,
			Description: server.Description,
		}
		if result := results[i]; result != nil {
			status.IsOnline = true
			status.Port = int(result.Port)
			status.VersionName = result.VersionName
			status.PlayersOnline = result.PlayersOnline
			status.PlayersMax = result.PlayersMax
			// Some servers advertise more players than slots; keep
			// the published pair consistent.
			if status.PlayersMax < status.PlayersOnline {
				status.PlayersMax = status.PlayersOnline
			}
		} else {
			// Offline entries publish the default port, whatever was
			// configured.
			status.Port = protocol.DefaultPort
		}
		statuses[i] = status
	}
	return statuses
}

// publish builds both orderings from one classification and swaps them in
// together, so readers always see a matched pair.
func (s *Service) publish(statuses []ServerStatus) {
	ascending := make([]ServerStatus, len(statuses))
	copy(ascending, statuses)
	stableSortByPlayers(ascending)

	descending := make([]ServerStatus, len(ascending))
	for i, status := range ascending {
		descending[len(descending)-1-i] = status
	}

	s.mu.Lock()
	s.ascending = ascending
	s.descending = descending
	s.published = true
	s.mu.Unlock()
}

// stableSortByPlayers sorts ascending by player count, offline servers
// counting as zero, preserving configured order between equals.
func stableSortByPlayers(statuses []ServerStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].PlayersOnline < statuses[j].PlayersOnline
	})
}

// List returns the published snapshot for the given ordering. It never
// blocks on polling and never fails; before the first cycle completes it
// returns an empty snapshot. Callers must not mutate the returned slice.
func (s *Service) List(ordering Ordering) []ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch ordering {
	case OrderPlayerReverse:
		return s.ascending
	default:
		return s.descending
	}
}

// Ready reports whether at least one poll cycle has published.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}

// sleep waits for d or until ctx is cancelled, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
