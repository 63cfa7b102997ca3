package ostium

import (
	"context"
	"log/slog"

	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

// Tracer observes permission resolution. Implementations must be safe
// for concurrent use; the engine calls them on the hot path.
type Tracer interface {
	// RuleEvaluated is called once per candidate rule with its score.
	// A score of -1 means the rule did not apply.
	RuleEvaluated(ctx context.Context, rl *rule.Rule, req AccessRequest, score int)

	// Decision is called once per resolution with the final outcome.
	Decision(ctx context.Context, req AccessRequest, permission sec.Permission)
}

// NopTracer discards all trace events.
type NopTracer struct{}

func (NopTracer) RuleEvaluated(context.Context, *rule.Rule, AccessRequest, int) {}
func (NopTracer) Decision(context.Context, AccessRequest, sec.Permission)       {}

// SlogTracer writes trace events to a structured logger at debug level.
type SlogTracer struct {
	Logger *slog.Logger
}

func (t SlogTracer) RuleEvaluated(ctx context.Context, rl *rule.Rule, req AccessRequest, score int) {
	t.Logger.DebugContext(ctx, "rule evaluated",
		"rule_id", rl.ID.String(),
		"resource_type", rl.ResourceType,
		"property", rl.Property,
		"access_type", rl.AccessType,
		"principal_type", rl.PrincipalType,
		"principal_id", rl.PrincipalID,
		"permission", rl.Permission,
		"score", score,
	)
}

func (t SlogTracer) Decision(ctx context.Context, req AccessRequest, permission sec.Permission) {
	t.Logger.DebugContext(ctx, "access decision",
		"resource_type", req.ResourceType,
		"property", req.Property,
		"access_type", req.AccessType,
		"permission", permission,
	)
}
