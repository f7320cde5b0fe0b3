package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
)

// one transport for every model client so connections to the same host are reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetHTTPClient returns a client on the shared transport. A timeout <= 0
// leaves the client without one.
func GetHTTPClient(timeout time.Duration) *http.Client {
	c := &http.Client{Transport: customTransport}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return c
}
