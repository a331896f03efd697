// Package api binds the snapshot query interface to an HTTP/JSON endpoint.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/0xkowalskidev/mcserverlist/poller"
)

// Lister provides read access to the published snapshots.
type Lister interface {
	List(ordering poller.Ordering) []poller.ServerStatus
	Ready() bool
}

// Server serves the server-list API.
type Server struct {
	lister Lister
	log    *zap.Logger
}

// New creates a Server reading from lister. A nil logger logs nothing.
func New(lister Lister, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{lister: lister, log: log}
}

// Handler returns the route table: the server-list endpoint, liveness, and
// Prometheus metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get_server_list", s.handleServerList)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// entry is the wire form of one server. It carries the full tracked state,
// not just the minimum consumers need.
type entry struct {
	Port          int64  `json:"port"`
	IP            string `json:"ip"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	IsOnline      bool   `json:"is_online"`
	VersionName   string `json:"version_name"`
	PlayersOnline int64  `json:"players_online"`
	PlayersMax    int64  `json:"players_max"`
}

// handleServerList answers GET /api/get_server_list?ordering=<json string>.
// ordering is a JSON-encoded string literal, "Player" or "PlayerReverse".
// Anything else is a 400 with an empty body.
func (s *Server) handleServerList(w http.ResponseWriter, r *http.Request) {
	ordering, err := parseOrdering(r.URL.Query().Get("ordering"))
	if err != nil {
		s.log.Debug("rejected server list request", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.log.Debug("serving server list", zap.Stringer("ordering", ordering))

	statuses := s.lister.List(ordering)
	entries := make([]entry, len(statuses))
	for i, status := range statuses {
		entries[i] = entry{
			Port:          int64(status.Port),
			IP:            status.IP,
			Name:          status.Name,
			Icon:          status.Icon,
			Description:   status.Description,
			IsOnline:      status.IsOnline,
			VersionName:   status.VersionName,
			PlayersOnline: int64(status.PlayersOnline),
			PlayersMax:    int64(status.PlayersMax),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.log.Warn("failed to write server list response", zap.Error(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.lister.Ready() {
		http.Error(w, "no poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parseOrdering(raw string) (poller.Ordering, error) {
	var name string
	if err := json.Unmarshal([]byte(raw), &name); err != nil {
		return 0, fmt.Errorf("ordering is not a json string: %w", err)
	}
	switch name {
	case "Player":
		return poller.OrderPlayer, nil
	case "PlayerReverse":
		return poller.OrderPlayerReverse, nil
	default:
		return 0, fmt.Errorf("unknown ordering %q", name)
	}
}
