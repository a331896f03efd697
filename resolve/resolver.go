package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/0xkowalskidev/mcserverlist/protocol"
)

// srvService is the DNS service label Minecraft clients query when no port
// was given explicitly.
const srvService = "_minecraft._tcp."

// ErrNoCandidates is returned when resolution yields no usable socket
// addresses.
var ErrNoCandidates = errors.New("no socket candidates resolved")

// Candidate is one socket address a probe may dial.
type Candidate struct {
	IP   net.IP
	Port uint16
}

// Addr returns the candidate as a dialable "host:port" string.
func (c Candidate) Addr() string {
	return net.JoinHostPort(c.IP.String(), strconv.Itoa(int(c.Port)))
}

func (c Candidate) String() string { return c.Addr() }

// SRVRecord is the subset of a DNS SRV answer the resolver acts on. Weight is
// carried for completeness but never used for selection: every target in the
// lowest-priority group is raced in parallel, so the fastest one wins
// regardless of weight.
type SRVRecord struct {
	Target   string
	Port     uint16
	Priority uint16
	Weight   uint16
}

// HostLookup resolves a name to its A/AAAA addresses.
type HostLookup interface {
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// SRVLookup fetches the Minecraft SRV records for a logical hostname.
type SRVLookup interface {
	LookupSRV(ctx context.Context, host string) ([]SRVRecord, error)
}

// Resolver turns a configured hostname and optional port into the set of
// socket candidates a probe should race.
type Resolver struct {
	// Hosts resolves A/AAAA records. Nil uses the system resolver.
	Hosts HostLookup
	// SRV resolves Minecraft SRV records. Nil uses a resolv.conf-backed
	// DNS client.
	SRV SRVLookup
	// ForceIPv4 drops IPv6 addresses at every stage.
	ForceIPv4 bool
}

// Candidates resolves host into socket candidates. A non-zero port skips SRV
// entirely and pairs every resolved address with it. A zero port queries
// _minecraft._tcp.<host>. first: all targets of the lowest-priority group are
// expanded to addresses paired with the SRV-provided port, and only if SRV
// yields nothing does the host itself get resolved with the default port.
// The returned list is unordered; an empty result is ErrNoCandidates.
func (r *Resolver) Candidates(ctx context.Context, host string, port uint16) ([]Candidate, error) {
	if port != 0 {
		cands, err := r.lookupCandidates(ctx, host, port)
		if err != nil {
			return nil, err
		}
		if len(cands) == 0 {
			return nil, fmt.Errorf("%w for %s:%d (force_ipv4=%v)", ErrNoCandidates, host, port, r.ForceIPv4)
		}
		return cands, nil
	}

	var cands []Candidate
	records, err := r.srv().LookupSRV(ctx, host)
	if err == nil && len(records) > 0 {
		for _, rec := range lowestPriority(records) {
			target := strings.TrimSuffix(rec.Target, ".")
			targetCands, err := r.lookupCandidates(ctx, target, rec.Port)
			if err != nil {
				continue
			}
			cands = append(cands, targetCands...)
		}
	}

	// SRV failed, returned nothing, or none of its targets resolved:
	// fall back to the host itself on the default port.
	if len(cands) == 0 {
		cands, err = r.lookupCandidates(ctx, host, protocol.DefaultPort)
		if err != nil {
			return nil, err
		}
	}

	if len(cands) == 0 {
		return nil, fmt.Errorf("%w for %s (force_ipv4=%v)", ErrNoCandidates, host, r.ForceIPv4)
	}
	return cands, nil
}

// lookupCandidates resolves host to addresses and pairs each with port,
// applying the IPv4 filter.
func (r *Resolver) lookupCandidates(ctx context.Context, host string, port uint16) ([]Candidate, error) {
	ips, err := r.hosts().LookupIP(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	cands := make([]Candidate, 0, len(ips))
	for _, ip := range ips {
		if r.ForceIPv4 && ip.To4() == nil {
			continue
		}
		cands = append(cands, Candidate{IP: ip, Port: port})
	}
	return cands, nil
}

// lowestPriority selects the subset of records sharing the minimum priority
// value. RFC 2782 priority grouping applies; weighted selection within the
// group does not, since the group is raced in parallel.
func lowestPriority(records []SRVRecord) []SRVRecord {
	min := records[0].Priority
	for _, rec := range records[1:] {
		if rec.Priority < min {
			min = rec.Priority
		}
	}
	group := make([]SRVRecord, 0, len(records))
	for _, rec := range records {
		if rec.Priority == min {
			group = append(group, rec)
		}
	}
	return group
}

func (r *Resolver) hosts() HostLookup {
	if r.Hosts != nil {
		return r.Hosts
	}
	return systemHosts{}
}

func (r *Resolver) srv() SRVLookup {
	if r.SRV != nil {
		return r.SRV
	}
	return defaultSRV
}

// systemHosts resolves through the system resolver.
type systemHosts struct{}

func (systemHosts) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, addr := range addrs {
		ips[i] = addr.IP
	}
	return ips, nil
}
