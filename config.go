package accessgraph

import "time"

// Config holds configuration for the authorization engine.
type Config struct {
	// CacheTTL is the time-to-live for cached check results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// EnableKeyRoles enables inherited access through key-role
	// intermediaries. Defaults to true.
	EnableKeyRoles *bool `json:"enable_key_roles,omitempty"`

	// EnableDelegations enables access resolved through delegation chains.
	// Defaults to true.
	EnableDelegations *bool `json:"enable_delegations,omitempty"`

	// EnableDecisionLog persists an audit entry for every gate verdict.
	// Defaults to true.
	EnableDecisionLog *bool `json:"enable_decision_log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		EnableKeyRoles:    &t,
		EnableDelegations: &t,
		EnableDecisionLog: &t,
	}
}

func (c Config) keyRolesEnabled() bool    { return c.EnableKeyRoles == nil || *c.EnableKeyRoles }
func (c Config) delegationsEnabled() bool { return c.EnableDelegations == nil || *c.EnableDelegations }
func (c Config) decisionLogEnabled() bool { return c.EnableDecisionLog == nil || *c.EnableDecisionLog }
