package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"strings"

	"golang.org/x/net/http2"

	"github.com/filedrop/filedrop/internal/config"
)

// CreateTransferClient creates the client used for uploads and downloads.
//
// It starts from ConfigureHTTPClient so transfers honour the same proxy
// settings as list/delete calls, then:
//   - removes the overall timeout (transfers are bounded by their context)
//   - enables HTTP/2 unless DISABLE_HTTP2=true or a proxy is active
//   - disables compression
//
// A nil cfg yields a client without proxy configuration.
func CreateTransferClient(cfg *config.Config) (*nethttp.Client, error) {
	var baseClient *nethttp.Client
	if cfg != nil {
		var err error
		baseClient, err = ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		baseClient = &nethttp.Client{Transport: newBaseTransport()}
	}

	tr, ok := baseClient.Transport.(*nethttp.Transport)
	if !ok {
		// NTLM wraps the transport in a negotiator; leave it untouched.
		baseClient.Timeout = 0
		return baseClient, nil
	}

	tr.DisableCompression = true
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" || (proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true") {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	baseClient.Transport = tr
	baseClient.Timeout = 0
	return baseClient, nil
}

// proxyActive reports whether requests will go through a proxy.
// Proxies often break HTTP/2 multiplexing mid-transfer.
func proxyActive(cfg *config.Config) bool {
	envProxy := os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
		os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	if cfg == nil {
		return false
	}
	switch strings.ToLower(cfg.ProxyMode) {
	case "no-proxy", "":
		return false
	case "system":
		return envProxy
	default:
		return cfg.ProxyHost != ""
	}
}
