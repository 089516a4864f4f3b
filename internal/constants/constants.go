// Package constants provides named defaults used throughout procsim.
package constants

import "time"

// Server identity reported in build info.
const (
	// DefaultServerName is the implementation name announced to MCP clients.
	DefaultServerName = "procsim"

	// DefaultProductName is the product name reported in build info.
	DefaultProductName = "Demo Process Server"

	// DefaultBuildNumber is the build number reported in build info.
	DefaultBuildNumber = "1.0.0"

	// DefaultResourcePath prefixes every resource URI.
	DefaultResourcePath = "UA/DemoServer"

	// URIScheme is the scheme of resource URIs.
	URIScheme = "procsim"
)

// Network defaults
const (
	// DefaultPort is the HTTP listen port, the IANA-registered OPC UA port.
	DefaultPort = 4840

	// DefaultHost is the HTTP listen host.
	DefaultHost = "0.0.0.0"

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 5 * time.Second

	// DefaultRateBurst is the per-client HTTP burst when rate limiting is on.
	DefaultRateBurst = 20
)

// Simulation defaults
const (
	// DefaultTickInterval is the counter tick period.
	DefaultTickInterval = time.Second
)

// Transport names accepted by the serve command.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportNone  = "none"
)
