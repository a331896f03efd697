package resolve

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/miekg/dns"
)

// Go's built-in resolver hides SRV priorities behind its own sorting and
// cannot distinguish "no records" from transport failure cleanly, so SRV
// queries go through miekg/dns against the servers in /etc/resolv.conf.

var defaultSRV = &dnsSRV{}

// dnsSRV queries the resolv.conf nameservers for SRV records, falling back
// to TCP when a UDP answer comes back truncated.
type dnsSRV struct {
	once      sync.Once
	config    *dns.ClientConfig
	udpClient *dns.Client
	tcpClient *dns.Client
	initErr   error
}

func (d *dnsSRV) init() {
	d.config, d.initErr = dns.ClientConfigFromFile("/etc/resolv.conf")
	if d.initErr != nil {
		return
	}
	d.udpClient = &dns.Client{UDPSize: dns.DefaultMsgSize}
	d.tcpClient = &dns.Client{Net: "tcp"}
}

func (d *dnsSRV) LookupSRV(ctx context.Context, host string) ([]SRVRecord, error) {
	d.once.Do(d.init)
	if d.initErr != nil {
		return nil, d.initErr
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(srvService+host), dns.TypeSRV)

	var lastErr error
	for _, server := range d.config.Servers {
		addr := net.JoinHostPort(server, d.config.Port)
		res, _, err := d.udpClient.ExchangeContext(ctx, msg, addr)
		if err != nil {
			lastErr = err
			continue
		}
		if res.Truncated {
			res, _, err = d.tcpClient.ExchangeContext(ctx, msg, addr)
			if err != nil {
				lastErr = err
				continue
			}
		}
		return srvAnswers(res), nil
	}

	if lastErr == nil {
		lastErr = errors.New("no nameservers configured")
	}
	return nil, lastErr
}

func srvAnswers(msg *dns.Msg) []SRVRecord {
	records := make([]SRVRecord, 0, len(msg.Answer))
	for _, rr := range msg.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		records = append(records, SRVRecord{
			Target:   srv.Target,
			Port:     srv.Port,
			Priority: srv.Priority,
			Weight:   srv.Weight,
		})
	}
	return records
}
