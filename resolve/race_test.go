package resolve

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDialer returns piped connections after a per-address delay and records
// which attempts saw a cancellation.
type stubDialer struct {
	delays map[string]time.Duration
	errs   map[string]error

	mu        sync.Mutex
	dialed    []string
	cancelled []string
	peers     []net.Conn
}

func (d *stubDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, address)
	d.mu.Unlock()

	timer := time.NewTimer(d.delays[address])
	defer timer.Stop()

	select {
	case <-timer.C:
		if err, ok := d.errs[address]; ok {
			return nil, err
		}
		client, server := net.Pipe()
		d.mu.Lock()
		d.peers = append(d.peers, server)
		d.mu.Unlock()
		return client, nil
	case <-ctx.Done():
		d.mu.Lock()
		d.cancelled = append(d.cancelled, address)
		d.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (d *stubDialer) wasCancelled(address string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.cancelled {
		if a == address {
			return true
		}
	}
	return false
}

func TestRace_FirstSuccessWins(t *testing.T) {
	slow := Candidate{IP: net.ParseIP("192.0.2.1"), Port: 25565}
	fast := Candidate{IP: net.ParseIP("192.0.2.2"), Port: 25565}

	dialer := &stubDialer{delays: map[string]time.Duration{
		slow.Addr(): 200 * time.Millisecond,
		fast.Addr(): 10 * time.Millisecond,
	}}

	conn, winner, err := Race(context.Background(), dialer, []Candidate{slow, fast}, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, fast.Addr(), winner.Addr())

	// The loser's attempt is aborted rather than left to finish.
	assert.Eventually(t, func() bool {
		return dialer.wasCancelled(slow.Addr())
	}, time.Second, 5*time.Millisecond)
}

func TestRace_WinnerAfterFailures(t *testing.T) {
	bad := Candidate{IP: net.ParseIP("192.0.2.1"), Port: 25565}
	good := Candidate{IP: net.ParseIP("192.0.2.2"), Port: 25565}

	dialer := &stubDialer{
		delays: map[string]time.Duration{
			bad.Addr():  time.Millisecond,
			good.Addr(): 20 * time.Millisecond,
		},
		errs: map[string]error{
			bad.Addr(): errors.New("connection refused"),
		},
	}

	conn, winner, err := Race(context.Background(), dialer, []Candidate{bad, good}, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, good.Addr(), winner.Addr())
}

func TestRace_AllFail(t *testing.T) {
	a := Candidate{IP: net.ParseIP("192.0.2.1"), Port: 25565}
	b := Candidate{IP: net.ParseIP("192.0.2.2"), Port: 1}

	refused := errors.New("connection refused")
	dialer := &stubDialer{
		delays: map[string]time.Duration{},
		errs: map[string]error{
			a.Addr(): refused,
			b.Addr(): refused,
		},
	}

	_, _, err := Race(context.Background(), dialer, []Candidate{a, b}, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, refused)
	// The error lists every attempted address.
	assert.Contains(t, err.Error(), a.Addr())
	assert.Contains(t, err.Error(), b.Addr())
}

func TestRace_NoCandidates(t *testing.T) {
	_, _, err := Race(context.Background(), &stubDialer{}, nil, time.Second)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestRace_PerAttemptTimeout(t *testing.T) {
	stuck := Candidate{IP: net.ParseIP("192.0.2.1"), Port: 25565}
	dialer := &stubDialer{delays: map[string]time.Duration{
		stuck.Addr(): time.Minute,
	}}

	start := time.Now()
	_, _, err := Race(context.Background(), dialer, []Candidate{stuck}, 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
