package extension

// Config holds the Ostium extension configuration.
// Fields can be set programmatically via option functions or loaded from
// YAML configuration files (under "extensions.ostium" or "ostium" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DefaultPermission is the engine fallback when no rule decides.
	DefaultPermission string `json:"default_permission" mapstructure:"default_permission" yaml:"default_permission"`

	// AuditAll records an audit entry for every check, not only AUDIT
	// and ALARM outcomes.
	AuditAll bool `json:"audit_all" mapstructure:"audit_all" yaml:"audit_all"`

	// MaxRelationDepth bounds the relation graph walk for $related.
	MaxRelationDepth int `json:"max_relation_depth" mapstructure:"max_relation_depth" yaml:"max_relation_depth"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
