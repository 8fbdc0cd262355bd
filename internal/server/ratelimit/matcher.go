package ratelimit

import "strings"

// MatchEndpoint returns the configuration that applies to method and path, or
// nil when none does. An exact path beats a prefix entry, and among prefixes
// the longest wins, so "/runs/" covers "/runs/{id}/archive" unless a more
// specific entry exists.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if c.prefix() && strings.HasPrefix(path, c.Path) && (best == nil || len(c.Path) > len(best.Path)) {
			best = c
		}
	}
	return best
}
