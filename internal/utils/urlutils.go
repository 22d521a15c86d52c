package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL prepares a target URL typed on the command line: surrounding
// whitespace is dropped, http:// is assumed when no scheme is given
// (http: for protocol-relative //host forms) and the host is lowercased.
// The path and query are kept untouched.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", nil
	}
	switch {
	case strings.HasPrefix(rawURL, "//"):
		rawURL = "http:" + rawURL
	case !strings.Contains(rawURL, "://"):
		rawURL = "http://" + rawURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	parsedURL.Host = strings.ToLower(parsedURL.Host)
	return parsedURL.String(), nil
}
