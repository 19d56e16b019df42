// Package connectivity reports whether the environment currently has
// network access. The verdict drives the cache fallback policy: callers
// consult it before attempting remote reads instead of catching request
// failures after the fact.
package connectivity

import (
	"net"
	"sync"
	"time"
)

const (
	defaultProbeHost = "api.themoviedb.org:443"
	probeTimeout     = 2 * time.Second
	verdictTTL       = 15 * time.Second
)

// Checker reports current network reachability.
type Checker interface {
	Online() bool
}

// Probe checks reachability by dialing a well-known host. The verdict is
// cached for a short interval so hot read paths do not dial per call.
type Probe struct {
	host string

	mu      sync.Mutex
	verdict bool
	checked time.Time
}

// NewProbe creates a probe against the given host:port.
// An empty host falls back to the movie metadata API endpoint.
func NewProbe(host string) *Probe {
	if host == "" {
		host = defaultProbeHost
	}
	return &Probe{host: host}
}

func (p *Probe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.checked) < verdictTTL {
		return p.verdict
	}

	conn, err := net.DialTimeout("tcp", p.host, probeTimeout)
	if err == nil {
		conn.Close()
	}
	p.verdict = err == nil
	p.checked = time.Now()
	return p.verdict
}

// Static is a fixed connectivity verdict, used for forced-offline mode
// and in tests.
type Static bool

func (s Static) Online() bool { return bool(s) }
