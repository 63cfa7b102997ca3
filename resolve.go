package ostium

import (
	"context"
	"sort"

	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

type scoredRule struct {
	rule  *rule.Rule
	score int
	index int
}

// ResolvePermission reduces a set of candidate rules to a single
// permission for the request. Rules that do not apply are discarded;
// the rest are ranked by MatchScore with the original order breaking
// ties, so equally specific rules resolve deterministically.
//
// A non-wildcard request takes the strongest-ranked rule outright. A
// wildcard request aggregates: a rule matching the request's fields
// exactly short-circuits, otherwise the strongest permission among the
// applicable rules wins, DENY strongest.
//
// Returns DEFAULT and a nil rule when no rule applies; callers layer
// resource and engine defaults on top.
func ResolvePermission(rules []*rule.Rule, req AccessRequest) (sec.Permission, *rule.Rule) {
	return resolvePermission(context.Background(), rules, req, NopTracer{})
}

func resolvePermission(ctx context.Context, rules []*rule.Rule, req AccessRequest, tracer Tracer) (sec.Permission, *rule.Rule) {
	scored := make([]scoredRule, 0, len(rules))
	for i, rl := range rules {
		score := MatchScore(rl, req)
		tracer.RuleEvaluated(ctx, rl, req, score)
		if score < 0 {
			continue
		}
		scored = append(scored, scoredRule{rule: rl, score: score, index: i})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].index < scored[j].index
	})

	permission := sec.Default
	var winner *rule.Rule
	for _, sr := range scored {
		perm := sr.rule.Permission
		if !req.IsWildcard() {
			permission = perm
			winner = sr.rule
			break
		}
		if req.MatchesExactly(sr.rule) {
			permission = perm
			winner = sr.rule
			break
		}
		if perm.Order() > permission.Order() {
			permission = perm
			winner = nil
		}
	}

	// An unset permission scores as ALLOW but resolves as DEFAULT, so
	// the resource's configured default still decides.
	if permission == "" {
		permission = sec.Default
	}

	tracer.Decision(ctx, req, permission)
	return permission, winner
}
