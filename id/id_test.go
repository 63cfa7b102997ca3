package id_test

import (
	"strings"
	"testing"

	"github.com/ostium-io/ostium/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"RuleID", id.NewRuleID, "acl_"},
		{"RoleID", id.NewRoleID, "role_"},
		{"MappingID", id.NewMappingID, "rmap_"},
		{"RelationID", id.NewRelationID, "rel_"},
		{"TokenID", id.NewTokenID, "tok_"},
		{"AuditID", id.NewAuditID, "audit_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"RuleID", id.NewRuleID, id.ParseRuleID},
		{"RoleID", id.NewRoleID, id.ParseRoleID},
		{"MappingID", id.NewMappingID, id.ParseMappingID},
		{"RelationID", id.NewRelationID, id.ParseRelationID},
		{"TokenID", id.NewTokenID, id.ParseTokenID},
		{"AuditID", id.NewAuditID, id.ParseAuditID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossPrefixRejection(t *testing.T) {
	roleID := id.NewRoleID().String()
	if _, err := id.ParseRuleID(roleID); err == nil {
		t.Fatalf("expected ParseRuleID to reject %q", roleID)
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID
	if !nilID.IsNil() {
		t.Fatal("zero value should be nil")
	}
	if nilID.String() != "" {
		t.Fatalf("nil ID should stringify empty, got %q", nilID.String())
	}

	v, err := nilID.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("nil ID should Value() to NULL, got %v", v)
	}
}

func TestScan(t *testing.T) {
	original := id.NewRuleID()

	var scanned id.ID
	if err := scanned.Scan(original.String()); err != nil {
		t.Fatal(err)
	}
	if scanned.String() != original.String() {
		t.Fatalf("scan mismatch: %q != %q", scanned.String(), original.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if !fromNil.IsNil() {
		t.Fatal("scanning nil should yield the Nil ID")
	}

	var bad id.ID
	if err := bad.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
