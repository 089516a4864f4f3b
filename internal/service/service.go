// Package service implements the read-only operations clients perform on
// the address space: browsing, reading variables and reporting server
// status. The MCP adapter and the HTTP monitor are thin transports over it.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nvandessel/procsim/internal/constants"
	"github.com/nvandessel/procsim/internal/namespace"
)

// ErrInvalidURI is returned for resource URIs outside this server's prefix.
var ErrInvalidURI = errors.New("invalid resource URI")

// CounterReader reads the simulated counter.
type CounterReader interface {
	Load() int32
}

// TickCounter reports how many ticks the counter process performed.
type TickCounter interface {
	Ticks() uint64
}

// BuildInfo identifies the running server.
type BuildInfo struct {
	ServerName  string
	Version     string
	ProductName string
	BuildNumber string
	BuildDate   time.Time
}

// Options configures a Service.
type Options struct {
	Space   *namespace.Space
	Counter CounterReader
	Ticker  TickCounter
	Build   BuildInfo

	// ResourcePath is the URI path prefix, e.g. "UA/DemoServer".
	ResourcePath string

	// OnReadError is called with the requested path and the cause when a
	// read fails.
	OnReadError func(path string, err error)

	// Now defaults to time.Now.
	Now func() time.Time

	// Started is the reported start time. Zero means Now() at New.
	Started time.Time
}

// Service serves browse, read and status requests.
type Service struct {
	space       *namespace.Space
	counter     CounterReader
	ticker      TickCounter
	build       BuildInfo
	uriPrefix   string
	onReadError func(path string, err error)
	now         func() time.Time
	started     time.Time
}

// New creates a Service. Space is required.
func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Started.IsZero() {
		opts.Started = opts.Now()
	}
	if opts.OnReadError == nil {
		opts.OnReadError = func(string, error) {}
	}

	prefix := constants.URIScheme + "://"
	if p := strings.Trim(opts.ResourcePath, "/"); p != "" {
		prefix += p + "/"
	}

	return &Service{
		space:       opts.Space,
		counter:     opts.Counter,
		ticker:      opts.Ticker,
		build:       opts.Build,
		uriPrefix:   prefix,
		onReadError: opts.OnReadError,
		now:         opts.Now,
		started:     opts.Started,
	}
}

// Space returns the served address space.
func (s *Service) Space() *namespace.Space {
	return s.space
}

// URI returns the resource URI of a node.
func (s *Service) URI(n *namespace.Node) string {
	return s.uriPrefix + n.Path()
}

// BrowseURI returns the URI of the namespace tree resource.
func (s *Service) BrowseURI() string {
	return s.uriPrefix + "browse"
}

// PathFromURI extracts the node path from a resource URI.
func (s *Service) PathFromURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, s.uriPrefix) {
		return "", fmt.Errorf("%s: %w", uri, ErrInvalidURI)
	}

	path := strings.TrimPrefix(uri, s.uriPrefix)
	if path == "" {
		return "", fmt.Errorf("%s: empty node path: %w", uri, ErrInvalidURI)
	}
	return path, nil
}

// Status returns build info and runtime counters.
func (s *Service) Status() Status {
	now := s.now()

	st := Status{
		ServerName:    s.build.ServerName,
		Version:       s.build.Version,
		ProductName:   s.build.ProductName,
		BuildNumber:   s.build.BuildNumber,
		BuildDate:     formatTime(s.build.BuildDate),
		StartTime:     formatTime(s.started),
		CurrentTime:   formatTime(now),
		UptimeSeconds: now.Sub(s.started).Seconds(),
		Variables:     len(s.space.Variables()),
	}
	if s.counter != nil {
		st.Counter = s.counter.Load()
	}
	if s.ticker != nil {
		st.Ticks = s.ticker.Ticks()
	}

	return st
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
