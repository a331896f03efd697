package query

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/0xkowalskidev/mcserverlist/protocol"
	"github.com/0xkowalskidev/mcserverlist/resolve"
)

// Result describes one completed status exchange.
type Result struct {
	// Host is the logical hostname the probe was asked for.
	Host string
	// Port is the effective port: the one actually contacted and written
	// into the handshake, which SRV may have redirected away from the
	// configured one.
	Port uint16
	// Resolved is the socket address that won the connect race.
	Resolved net.Addr
	// ConnectDuration spans the start of the race to the winner.
	ConnectDuration time.Duration
	// RTT is the measured ping round trip.
	RTT time.Duration

	VersionName     string
	VersionProtocol int
	PlayersOnline   int
	PlayersMax      int
	// MOTD is the description flattened to plain text, formatting codes
	// included.
	MOTD string
	// Players holds the advertised player sample, if the server sent one.
	Players []string
}

// CleanMOTD returns the MOTD with legacy color codes stripped, for display.
func (r *Result) CleanMOTD() string {
	return protocol.StripColorCodes(r.MOTD)
}

// Probe resolves host, races a TCP connect across every candidate, and runs
// the status exchange against the winner. A zero port means "consult SRV,
// fall back to the default port"; a non-zero port is used as-is.
//
// The probe is fail-fast: any resolution, connect, or protocol failure is
// returned without retrying. Callers that poll retry on their own schedule.
func Probe(ctx context.Context, host string, port uint16, opts ...Option) (*Result, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	resolver := options.Resolver
	if resolver == nil {
		resolver = &resolve.Resolver{ForceIPv4: options.ForceIPv4}
	}

	cands, err := resolver.Candidates(ctx, host, port)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	connectStart := time.Now()
	conn, winner, err := resolve.Race(ctx, options.Dialer, cands, options.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}
	connectDuration := time.Since(connectStart)
	defer conn.Close()

	// The handshake carries the original hostname but the winning port:
	// proxies route on the name, while SRV may have moved the port.
	status, rtt, err := protocol.Exchange(conn, host, winner.Port, options.StepTimeout)
	if err != nil {
		return nil, fmt.Errorf("status exchange with %s: %w", conn.RemoteAddr(), err)
	}

	result := &Result{
		Host:            host,
		Port:            winner.Port,
		Resolved:        conn.RemoteAddr(),
		ConnectDuration: connectDuration,
		RTT:             rtt,
		VersionName:     status.Version.Name,
		VersionProtocol: status.Version.Protocol,
		PlayersOnline:   status.Players.Online,
		PlayersMax:      status.Players.Max,
		MOTD:            status.MOTD(),
	}
	for _, sample := range status.Players.Sample {
		result.Players = append(result.Players, sample.Name)
	}
	return result, nil
}
