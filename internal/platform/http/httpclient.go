package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates the HTTP client used for outbound quote lookups.
//
// http.DefaultClient has no timeout, so callers always go through this.
// timeout bounds the whole request; the transport bounds dialing and TLS separately.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
