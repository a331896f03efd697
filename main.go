package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/0xkowalskidev/mcserverlist/api"
	"github.com/0xkowalskidev/mcserverlist/config"
	"github.com/0xkowalskidev/mcserverlist/poller"
	"github.com/0xkowalskidev/mcserverlist/query"
)

func main() {
	var (
		configPath     = flag.String("config", "./servers.toml", "Path to the TOML server list")
		listen         = flag.String("listen", "localhost:3000", "HTTP listen address")
		interval       = flag.Duration("interval", poller.DefaultInterval, "Poll interval")
		connectTimeout = flag.Duration("connect-timeout", 3*time.Second, "Per-attempt TCP connect timeout")
		stepTimeout    = flag.Duration("timeout", 5*time.Second, "Per-step protocol I/O timeout")
		probeAddr      = flag.String("probe", "", "Probe a single server (host[:port]) and exit")
		format         = flag.String("format", "text", "One-shot probe output format (text, json)")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	opts := []query.Option{
		query.ConnectTimeout(*connectTimeout),
		query.StepTimeout(*stepTimeout),
	}
	if os.Getenv("MC_FORCE_IPV4") == "1" {
		opts = append(opts, query.ForceIPv4())
	}

	if *probeAddr != "" {
		if err := runProbe(*probeAddr, *format, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := newLogger()
	defer logger.Sync()

	service := poller.New(poller.Config{
		Load:         func() ([]config.Server, error) { return config.Load(*configPath) },
		ProbeOptions: opts,
		Interval:     *interval,
		Logger:       logger,
	})
	service.Register(prometheus.DefaultRegisterer)

	go service.Run(context.Background())

	server := api.New(service, logger)
	logger.Info("starting http server", zap.String("listen", *listen))
	if err := http.ListenAndServe(*listen, server.Handler()); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

// newLogger builds the process logger. LOG_LEVEL selects the level (debug,
// info, warn, error), defaulting to info.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if level, err := zapcore.ParseLevel(raw); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// runProbe performs a one-shot probe and prints the result.
func runProbe(addr, format string, opts []query.Option) error {
	host, port, err := splitAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := query.Probe(ctx, host, port, opts...)
	if err != nil {
		return err
	}
	return outputResult(result, format)
}

// splitAddress parses host[:port]. A missing port stays zero so the resolver
// consults SRV.
func splitAddress(addr string) (string, uint16, error) {
	if addr == "" {
		return "", 0, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// No port specified - check if it's IPv6 with brackets but no port
		if len(addr) > 2 && addr[0] == '[' && addr[len(addr)-1] == ']' {
			return addr[1 : len(addr)-1], 0, nil
		}
		return addr, 0, nil
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port: %s", portStr)
	}
	return host, uint16(port), nil
}

func outputResult(result *query.Result, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		fmt.Printf("Address: %s:%d (resolved: %s)\n", result.Host, result.Port, result.Resolved)
		fmt.Printf("Connect: %v\n", result.ConnectDuration.Round(time.Millisecond))
		fmt.Printf("RTT: %v\n", result.RTT.Round(time.Millisecond))
		fmt.Printf("Version: %s (protocol %d)\n", result.VersionName, result.VersionProtocol)
		fmt.Printf("Players: %d/%d\n", result.PlayersOnline, result.PlayersMax)
		fmt.Printf("MOTD: %s\n", result.CleanMOTD())
		for _, name := range result.Players {
			fmt.Printf("  %s\n", name)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func showHelp() {
	fmt.Printf(`mcserverlist - periodic status aggregator for Minecraft Java servers

Usage: mcserverlist [options]

Options:
  -config string            Path to the TOML server list (default "./servers.toml")
  -listen string            HTTP listen address (default "localhost:3000")
  -interval duration        Poll interval (default 10s)
  -connect-timeout duration Per-attempt TCP connect timeout (default 3s)
  -timeout duration         Per-step protocol I/O timeout (default 5s)
  -probe string             Probe a single server (host[:port]) and exit
  -format string            One-shot probe output format: text, json (default "text")
  -help                     Show this help

Environment:
  MC_FORCE_IPV4=1           Resolve IPv4 addresses only
  LOG_LEVEL                 Log level: debug, info, warn, error (default info)

Examples:
  mcserverlist -config servers.toml -listen :3000
  mcserverlist -probe play.hypixel.net              # SRV lookup, one-shot status
  mcserverlist -probe localhost:25565 -format json

The server list is re-read every cycle; entries without a port use the
_minecraft._tcp SRV record and fall back to port 25565.
`)
}
