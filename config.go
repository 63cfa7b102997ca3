package ostium

import "github.com/ostium-io/ostium/sec"

// Config carries engine-wide policy defaults.
type Config struct {
	// DefaultPermission is applied when resolution yields DEFAULT and
	// the resource descriptor has no default of its own. Empty means
	// ALLOW.
	DefaultPermission sec.Permission `json:"default_permission" yaml:"default_permission"`

	// AuditAll forces an audit entry for every check, not only those
	// resolving to AUDIT or ALARM.
	AuditAll bool `json:"audit_all" yaml:"audit_all"`

	// MaxRelationDepth bounds the graph walk performed by the $related
	// role resolver. Zero means DefaultMaxRelationDepth.
	MaxRelationDepth int `json:"max_relation_depth" yaml:"max_relation_depth"`
}

// DefaultMaxRelationDepth bounds $related traversal when the config
// does not set one.
const DefaultMaxRelationDepth = 3

// DefaultConfig returns the config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultPermission: sec.Allow,
		MaxRelationDepth:  DefaultMaxRelationDepth,
	}
}

func (c Config) defaultPermission() sec.Permission {
	if c.DefaultPermission == "" || c.DefaultPermission == sec.Default {
		return sec.Allow
	}
	return c.DefaultPermission
}

func (c Config) maxRelationDepth() int {
	if c.MaxRelationDepth <= 0 {
		return DefaultMaxRelationDepth
	}
	return c.MaxRelationDepth
}
