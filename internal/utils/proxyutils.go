package utils

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/rafabd1/hashes/internal/config"
)

// ParseProxyInput parses a proxy input string (a single proxy URL, a
// comma-separated list, or a file path with one proxy per line) into
// ProxyEntry values. Entries without a scheme default to http.
func ParseProxyInput(proxyInput string, logger Logger) ([]config.ProxyEntry, error) {
	if proxyInput == "" {
		return nil, nil
	}

	proxyStrings, err := readProxyStrings(proxyInput, logger)
	if err != nil {
		return nil, err
	}

	var parsedProxies []config.ProxyEntry
	for _, str := range proxyStrings {
		entry, err := parseProxy(str)
		if err != nil {
			logger.Warnf("Skipping proxy '%s': %v", str, err)
			continue
		}
		parsedProxies = append(parsedProxies, entry)
	}

	if len(proxyStrings) > 0 && len(parsedProxies) == 0 {
		return nil, fmt.Errorf("proxy input '%s' provided, but no valid proxies could be parsed", proxyInput)
	}
	for _, p := range parsedProxies {
		logger.Debugf("Parsed proxy: %s", p.String())
	}
	return parsedProxies, nil
}

func readProxyStrings(proxyInput string, logger Logger) ([]string, error) {
	if _, err := os.Stat(proxyInput); err != nil {
		var out []string
		for _, s := range strings.Split(proxyInput, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	logger.Debugf("Proxy input '%s' is a file, reading it.", proxyInput)
	file, err := os.Open(proxyInput)
	if err != nil {
		return nil, fmt.Errorf("failed to open proxy file '%s': %w", proxyInput, err)
	}
	defer file.Close()

	var out []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading proxy file '%s': %w", proxyInput, err)
	}
	return out, nil
}

func parseProxy(raw string) (config.ProxyEntry, error) {
	urlStr := raw
	if !strings.Contains(urlStr, "://") {
		urlStr = "http://" + urlStr
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return config.ProxyEntry{}, err
	}
	host, port := parsedURL.Hostname(), parsedURL.Port()
	if host == "" {
		return config.ProxyEntry{}, fmt.Errorf("empty host")
	}
	if port == "" {
		return config.ProxyEntry{}, fmt.Errorf("missing port")
	}

	entry := config.ProxyEntry{
		Scheme: parsedURL.Scheme,
		Host:   net.JoinHostPort(host, port),
	}
	canonical := url.URL{Scheme: entry.Scheme, Host: entry.Host}
	if parsedURL.User != nil {
		entry.Username = parsedURL.User.Username()
		entry.Password, _ = parsedURL.User.Password()
		canonical.User = url.UserPassword(entry.Username, entry.Password)
	}
	entry.URL = canonical.String()
	return entry, nil
}
