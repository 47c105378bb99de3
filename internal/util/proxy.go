package util

import (
	"fmt"
	"net/http"
	"net/url"
)

// NewProxyFunc returns a proxy selector for the download client.
// Explicit proxy URLs take precedence by scheme. With none configured,
// HTTP_PROXY/HTTPS_PROXY/NO_PROXY from the environment apply.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	httpURL, httpErr := parseProxy(httpProxy)
	httpsURL, httpsErr := parseProxy(httpsProxy)

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return httpsURL, httpsErr
		}
		if httpProxy != "" {
			return httpURL, httpErr
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing scheme or host", raw)
	}
	return u, nil
}
