package resolve

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultConnectTimeout bounds each individual connect attempt in a race.
const DefaultConnectTimeout = 3 * time.Second

// ContextDialer matches net.Dialer's DialContext and lets tests observe
// which attempts were started and cancelled.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Race dials every candidate concurrently and returns the first stream to
// connect together with the winning candidate. The moment a winner is chosen
// the remaining attempts are cancelled; their sockets are closed as they
// surface, without blocking the return. If every attempt fails, the last
// observed error is returned wrapped with the full list of attempted
// addresses.
//
// A nil dialer uses net.Dialer. perAttempt defaults to
// DefaultConnectTimeout when zero; a timed-out attempt counts as failed.
func Race(ctx context.Context, dialer ContextDialer, cands []Candidate, perAttempt time.Duration) (net.Conn, Candidate, error) {
	if len(cands) == 0 {
		return nil, Candidate{}, ErrNoCandidates
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	if perAttempt <= 0 {
		perAttempt = DefaultConnectTimeout
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type attempt struct {
		conn net.Conn
		cand Candidate
		err  error
	}
	results := make(chan attempt, len(cands))

	for _, cand := range cands {
		go func(cand Candidate) {
			dialCtx, dialCancel := context.WithTimeout(raceCtx, perAttempt)
			defer dialCancel()
			conn, err := dialer.DialContext(dialCtx, "tcp", cand.Addr())
			results <- attempt{conn: conn, cand: cand, err: err}
		}(cand)
	}

	var lastErr error
	for pending := len(cands); pending > 0; pending-- {
		res := <-results
		if res.err != nil {
			lastErr = res.err
			continue
		}

		// First success. Cancel the losers and tear down any stream
		// they still deliver.
		cancel()
		go func(remaining int) {
			for i := 0; i < remaining; i++ {
				if late := <-results; late.conn != nil {
					late.conn.Close()
				}
			}
		}(pending - 1)
		return res.conn, res.cand, nil
	}

	return nil, Candidate{}, fmt.Errorf("all connects failed (tried concurrently: %s): %w", joinAddrs(cands), lastErr)
}

func joinAddrs(cands []Candidate) string {
	addrs := make([]string, len(cands))
	for i, cand := range cands {
		addrs[i] = cand.Addr()
	}
	return strings.Join(addrs, ", ")
}
