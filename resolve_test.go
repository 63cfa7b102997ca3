package ostium

import (
	"testing"

	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

func TestResolvePermission_NoRules(t *testing.T) {
	perm, winner := ResolvePermission(nil, NewAccessRequest("account", "balance", sec.Read))
	if perm != sec.Default {
		t.Fatalf("got %s, want DEFAULT", perm)
	}
	if winner != nil {
		t.Fatal("expected nil winner")
	}
}

func TestResolvePermission_TopRuleWins(t *testing.T) {
	rules := []*rule.Rule{
		roleRule(sec.RoleEveryone, sec.Allow),
		userRule("account", "balance", sec.Read, sec.Deny),
	}

	perm, winner := ResolvePermission(rules, NewAccessRequest("account", "balance", sec.Read))
	if perm != sec.Deny {
		t.Fatalf("got %s, want DENY", perm)
	}
	if winner != rules[1] {
		t.Fatal("winner should be the user rule")
	}
}

func TestResolvePermission_InapplicableRulesIgnored(t *testing.T) {
	rules := []*rule.Rule{
		userRule("invoice", "balance", sec.Read, sec.Deny),
		userRule("account", "balance", sec.Read, sec.Allow),
	}

	perm, _ := ResolvePermission(rules, NewAccessRequest("account", "balance", sec.Read))
	if perm != sec.Allow {
		t.Fatalf("got %s, want ALLOW", perm)
	}
}

func TestResolvePermission_TieBrokenByOrder(t *testing.T) {
	first := userRule("account", "balance", sec.Read, sec.Allow)
	second := userRule("account", "balance", sec.Read, sec.Allow)
	second.PrincipalID = "u2"

	_, winner := ResolvePermission([]*rule.Rule{first, second}, NewAccessRequest("account", "balance", sec.Read))
	if winner != first {
		t.Fatal("equal scores should resolve to the earlier rule")
	}
}

func TestResolvePermission_EmptyPermissionResolvesDefault(t *testing.T) {
	// An unset permission ranks as ALLOW during scoring but resolves to
	// DEFAULT, so the resource's configured default still decides.
	rules := []*rule.Rule{userRule("account", "balance", sec.Read, "")}

	perm, _ := ResolvePermission(rules, NewAccessRequest("account", "balance", sec.Read))
	if perm != sec.Default {
		t.Fatalf("got %s, want DEFAULT", perm)
	}
}

func TestResolvePermission_OwnerOutranksEveryone(t *testing.T) {
	// Three rules on the same resource: a blanket $everyone DENY, an
	// $owner ALLOW, and a READ-only $everyone ALLOW. A WRITE request
	// must land on the $owner rule: the READ rule does not apply, and
	// $owner outranks $everyone at equal specificity.
	everyoneDeny := roleRule(sec.RoleEveryone, sec.Deny)
	ownerAllow := roleRule(sec.RoleOwner, sec.Allow)
	everyoneRead := roleRule(sec.RoleEveryone, sec.Allow)
	everyoneRead.AccessType = sec.Read

	perm, winner := ResolvePermission(
		[]*rule.Rule{everyoneDeny, ownerAllow, everyoneRead},
		NewAccessRequest("account", "find", sec.Write),
	)
	if perm != sec.Allow {
		t.Fatalf("got %s, want ALLOW", perm)
	}
	if winner != ownerAllow {
		t.Fatal("winner should be the $owner rule")
	}
}

func TestResolvePermission_SpecificAccessTypeOutranksWildcard(t *testing.T) {
	// Same principal, one wildcard-accessType ALLOW and one READ DENY.
	allow := userRule("account", "", "", sec.Allow)
	deny := userRule("account", "", sec.Read, sec.Deny)
	rules := []*rule.Rule{allow, deny}

	// A concrete READ request takes the accessType-specific rule.
	perm, winner := ResolvePermission(rules, NewAccessRequest("account", "name", sec.Read))
	if perm != sec.Deny {
		t.Fatalf("read request: got %s, want DENY", perm)
	}
	if winner != deny {
		t.Fatal("read request: winner should be the READ rule")
	}

	// A wildcard-accessType request aggregates; DENY is the strongest
	// permission among the applicable rules.
	perm, winner = ResolvePermission(rules, NewAccessRequest("account", "name", ""))
	if perm != sec.Deny {
		t.Fatalf("wildcard request: got %s, want DENY", perm)
	}
	if winner != nil {
		t.Fatal("wildcard request: aggregation carries no single winner")
	}
}

func TestResolvePermission_WildcardExactShortCircuit(t *testing.T) {
	// Wildcard property request: the rule matching the request fields
	// exactly decides even though a stronger permission follows it.
	exact := &rule.Rule{
		ResourceType:  "account",
		Property:      sec.All,
		AccessType:    sec.Read,
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u1",
		Permission:    sec.Allow,
	}
	narrower := userRule("account", "balance", sec.Read, sec.Deny)

	perm, winner := ResolvePermission([]*rule.Rule{narrower, exact}, NewAccessRequest("account", "", sec.Read))
	if perm != sec.Allow {
		t.Fatalf("got %s, want ALLOW from the structurally exact rule", perm)
	}
	if winner != exact {
		t.Fatal("winner should be the exact rule")
	}
}

func TestResolvePermission_WildcardAggregatesStrongest(t *testing.T) {
	// No rule matches the wildcard request exactly, so the strongest
	// permission among applicable rules wins and no single rule is the
	// winner.
	rules := []*rule.Rule{
		userRule("account", "balance", sec.Read, sec.Allow),
		userRule("account", "owner", sec.Read, sec.Deny),
	}

	perm, winner := ResolvePermission(rules, NewAccessRequest("account", "", sec.Read))
	if perm != sec.Deny {
		t.Fatalf("got %s, want DENY", perm)
	}
	if winner != nil {
		t.Fatal("aggregated decisions carry no single winning rule")
	}
}

func TestAccessRequest_Wildcard(t *testing.T) {
	if NewAccessRequest("account", "balance", sec.Read).IsWildcard() {
		t.Fatal("fully concrete request should not be wildcard")
	}
	if !NewAccessRequest("account", "", sec.Read).IsWildcard() {
		t.Fatal("empty property should normalize to wildcard")
	}
	if !NewAccessRequest("account", "balance", "").IsWildcard() {
		t.Fatal("empty access type should normalize to wildcard")
	}
}

func TestAccessRequest_MatchesExactly(t *testing.T) {
	req := NewAccessRequest("account", "find", sec.Read, "all", "find")

	if !req.MatchesExactly(userRule("account", "find", sec.Read, sec.Allow)) {
		t.Fatal("same property should match")
	}
	if !req.MatchesExactly(userRule("account", "all", sec.Read, sec.Allow)) {
		t.Fatal("alias property should match")
	}
	if req.MatchesExactly(userRule("account", "balance", sec.Read, sec.Allow)) {
		t.Fatal("unrelated property should not match")
	}
	if req.MatchesExactly(userRule("account", "find", sec.Write, sec.Allow)) {
		t.Fatal("different access type should not match")
	}
}
