package ratelimit

import "time"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
// A Limit or Window of zero leaves the endpoint unlimited.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends in "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

func (c *EndpointConfig) unlimited() bool {
	return c.Limit <= 0 || c.Window <= 0
}

func (c *EndpointConfig) prefix() bool {
	return len(c.Path) > 0 && c.Path[len(c.Path)-1] == '/'
}

// DefaultConfig returns the limits used when the server is not given any.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
// Generation calls the model, so it is limited far more strictly than downloads.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/health", Method: "GET"},
		{Path: "/generate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/generate/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/runs/", Method: "GET", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// ClientSet turns a list of client IPs into the lookup form used by Whitelist and Blacklist.
func ClientSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
