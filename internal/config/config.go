package config

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Run defaults.
const (
	DefaultAlgorithm         = "djbx33a"
	DefaultNumberOfKeys      = 85000
	DefaultRequestsPerClient = 1
	DefaultNumberOfClients   = 1
	DefaultConnectTimeout    = 60 * time.Second
	DefaultReadTimeout       = 60 * time.Second
	DefaultKeysFormat        = "text"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// mitmAlgorithms need a seed phrase when fresh keys are generated.
var mitmAlgorithms = map[string]bool{
	"djbx33x": true, "asp": true, "aspnet": true,
	"v8": true, "node": true,
}

// Config holds the whole configuration of a run.
// Fields are populated by viper from flags, environment and an optional file.
type Config struct {
	TargetURL          string        `mapstructure:"url"`
	Algorithm          string        `mapstructure:"algorithm"`
	Seed               string        `mapstructure:"seed"`
	MITMWorkers        int           `mapstructure:"mitm-workers"` // 0 means one per CPU
	GenerateNewKeys    bool          `mapstructure:"new"`
	NumberOfKeys       int           `mapstructure:"keys"`
	KeysFile           string        `mapstructure:"keys-file"` // reuse previously saved keys
	SaveKeysFile       string        `mapstructure:"save-keys"`
	SaveKeysFormat     string        `mapstructure:"save-format"`
	ProgressBar        bool          `mapstructure:"progress"`
	WaitResponse       bool          `mapstructure:"wait"`
	RequestsPerClient  int           `mapstructure:"requests"`
	NumberOfClients    int           `mapstructure:"clients"`
	ConnectTimeout     time.Duration `mapstructure:"connect-timeout"`
	ReadTimeout        time.Duration `mapstructure:"read-timeout"`
	RequestsPerSecond  float64       `mapstructure:"rps"` // 0 disables pacing
	CustomHeaders      []string      `mapstructure:"header"`
	UserAgent          string        `mapstructure:"user-agent"`
	ProxyInput         string        `mapstructure:"proxy"`
	ParsedProxies      []ProxyEntry  `mapstructure:"-"`
	InsecureSkipVerify bool          `mapstructure:"insecure"`
	Verbosity          string        `mapstructure:"loglevel"`
	NoColor            bool          `mapstructure:"no-color"`
	Silent             bool          `mapstructure:"silent"`
}

// ProxyEntry holds the parsed components of a proxy string.
type ProxyEntry struct {
	URL      string
	Scheme   string
	Host     string // host:port
	Username string
	Password string
}

// String returns the proxy URL without the password.
func (pe *ProxyEntry) String() string {
	userInfo := ""
	if pe.Username != "" {
		userInfo = pe.Username + "@"
	}
	scheme := pe.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s", scheme, userInfo, pe.Host)
}

// GetDefaultConfig returns a Config struct populated with default values.
func GetDefaultConfig() *Config {
	return &Config{
		Algorithm:         DefaultAlgorithm,
		NumberOfKeys:      DefaultNumberOfKeys,
		SaveKeysFormat:    DefaultKeysFormat,
		RequestsPerClient: DefaultRequestsPerClient,
		NumberOfClients:   DefaultNumberOfClients,
		ConnectTimeout:    DefaultConnectTimeout,
		ReadTimeout:       DefaultReadTimeout,
		CustomHeaders:     []string{},
		UserAgent:         DefaultUserAgent,
		Verbosity:         "info",
	}
}

// IsMITMAlgorithm reports whether fresh keys for the configured algorithm
// come from the meet-in-the-middle search.
func (c *Config) IsMITMAlgorithm() bool {
	return mitmAlgorithms[strings.ToLower(strings.TrimSpace(c.Algorithm))]
}

// Validate checks caller contract violations before any work begins.
func (c *Config) Validate() error {
	if c.TargetURL == "" && c.SaveKeysFile == "" {
		return fmt.Errorf("a target url or --save-keys is required")
	}
	if c.TargetURL != "" {
		u, err := url.Parse(c.TargetURL)
		if err != nil {
			return fmt.Errorf("invalid target url %q: %w", c.TargetURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported url scheme %q (want http or https)", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("target url %q has no host", c.TargetURL)
		}
	}
	if c.Algorithm == "" {
		return fmt.Errorf("algorithm cannot be empty")
	}
	if c.NumberOfKeys <= 0 {
		return fmt.Errorf("the number of keys should be greater than 0")
	}
	if c.RequestsPerClient <= 0 {
		return fmt.Errorf("the number of requests should be greater than 0")
	}
	if c.NumberOfClients <= 0 {
		return fmt.Errorf("the number of clients should be greater than 0")
	}
	if c.MITMWorkers < 0 {
		return fmt.Errorf("the number of MITM workers should be greater than 0")
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("the connection timeout should be greater than or equal to 0")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("the read timeout should be greater than or equal to 0")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("rps cannot be negative")
	}
	if c.GenerateNewKeys && c.KeysFile == "" && c.IsMITMAlgorithm() && c.Seed == "" {
		return fmt.Errorf("algorithm %s needs a --seed to generate new keys", c.Algorithm)
	}
	switch c.SaveKeysFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported keys format %q (want text or json)", c.SaveKeysFormat)
	}
	// keys files are read back as JSON only when they end in .json
	if c.SaveKeysFile != "" {
		isJSONFile := strings.EqualFold(filepath.Ext(c.SaveKeysFile), ".json")
		if isJSONFile != (c.SaveKeysFormat == "json") {
			return fmt.Errorf("keys file %q does not match format %q (json keys files must end in .json)", c.SaveKeysFile, c.SaveKeysFormat)
		}
	}
	if _, err := c.ParseHeaders(); err != nil {
		return err
	}
	return nil
}

// ParseHeaders turns the "Name: Value" entries of CustomHeaders into an http.Header.
func (c *Config) ParseHeaders() (http.Header, error) {
	headers := make(http.Header, len(c.CustomHeaders))
	for _, raw := range c.CustomHeaders {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed HTTP header: %s", raw)
		}
		name := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if name == "" || value == "" {
			return nil, fmt.Errorf("malformed HTTP header: %s", raw)
		}
		headers.Set(name, value)
	}
	return headers, nil
}

// String is used for debug logging.
func (c *Config) String() string {
	return fmt.Sprintf("URL: %s, Algorithm: %s, NewKeys: %t, Keys: %d, MITMWorkers: %d, Clients: %d, Requests/client: %d, ConnectTimeout: %s, ReadTimeout: %s, Wait: %t, RPS: %.2f, Proxies: %d, CustomHeaders (count): %d",
		c.TargetURL, c.Algorithm, c.GenerateNewKeys, c.NumberOfKeys, c.MITMWorkers, c.NumberOfClients, c.RequestsPerClient,
		c.ConnectTimeout, c.ReadTimeout, c.WaitResponse, c.RequestsPerSecond, len(c.ParsedProxies), len(c.CustomHeaders))
}
