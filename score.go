package ostium

import (
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

// MatchScore computes the match strength between a rule and a request.
// Higher scores win; -1 means the rule does not apply at all.
//
// The score is built most-significant-first in four stages, each stage
// shifting the running value to create a strict precedence tier:
//
//  1. resourceType, property, accessType, in that order, each shift
//     by 4: exact match (or property matching a method alias) adds 3, a
//     wildcard on the rule side adds 2, a wildcard on the request side
//     adds 1, and a plain mismatch aborts with -1.
//  2. Shift by 4, weigh the principal type: USER > APP > ROLE > other.
//  3. Shift by 8, weigh ROLE rules by role id: custom roles outrank the
//     built-ins, then $owner > $related > $authenticated and
//     $unauthenticated > $everyone.
//  4. Shift by 4, fold in the permission order as the final tie-break.
//
// Pure and deterministic: equal inputs always score equally.
func MatchScore(rl *rule.Rule, req AccessRequest) int {
	ruleFields := [3]string{
		orWildcard(rl.ResourceType),
		orWildcard(rl.Property),
		orWildcard(string(rl.AccessType)),
	}
	reqFields := [3]string{
		orWildcard(req.ResourceType),
		orWildcard(req.Property),
		orWildcard(string(req.AccessType)),
	}

	score := 0
	for i := 0; i < 3; i++ {
		score *= 4
		aliasMatch := i == 1 && matchesAlias(req.MethodNames, ruleFields[i])
		switch {
		case ruleFields[i] == reqFields[i] || aliasMatch:
			score += 3
		case ruleFields[i] == sec.All:
			score += 2
		case reqFields[i] == sec.All:
			score += 1
		default:
			return -1
		}
	}

	score *= 4
	switch rl.PrincipalType {
	case sec.PrincipalUser:
		score += 4
	case sec.PrincipalApp:
		score += 3
	case sec.PrincipalRole:
		score += 2
	default:
		score += 1
	}

	score *= 8
	if rl.PrincipalType == sec.PrincipalRole {
		switch rl.PrincipalID {
		case sec.RoleOwner:
			score += 4
		case sec.RoleRelated:
			score += 3
		case sec.RoleAuthenticated, sec.RoleUnauthenticated:
			score += 2
		case sec.RoleEveryone:
			score += 1
		default:
			// Custom roles outrank every built-in, $owner included:
			// explicit policy beats the generic conventions.
			score += 5
		}
	}

	score *= 4
	perm := rl.Permission
	if perm == "" {
		perm = sec.Allow
	}
	return score + perm.Order() - 1
}

func orWildcard(s string) string {
	if s == "" {
		return sec.All
	}
	return s
}

func matchesAlias(methodNames []string, property string) bool {
	for _, name := range methodNames {
		if name == property {
			return true
		}
	}
	return false
}
