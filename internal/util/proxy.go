package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the Proxy callback for an http.Transport from
// explicit proxy URLs. Scheme selects between them: https requests use
// httpsProxy when set, everything else uses httpProxy. With neither set,
// the standard HTTP_PROXY/HTTPS_PROXY environment handling applies.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
