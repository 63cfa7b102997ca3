package sec

import "testing"

func TestPermissionOrder(t *testing.T) {
	ordered := []Permission{Default, Allow, Alarm, Audit, Deny}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Order() <= ordered[i-1].Order() {
			t.Fatalf("%s should order above %s", ordered[i], ordered[i-1])
		}
		if !ordered[i].Stronger(ordered[i-1]) {
			t.Fatalf("%s should be stronger than %s", ordered[i], ordered[i-1])
		}
	}
	if Permission("BOGUS").Order() != Default.Order() {
		t.Fatal("unknown permission should order as DEFAULT")
	}
}

func TestPrincipalTypeValid(t *testing.T) {
	for _, pt := range []PrincipalType{PrincipalUser, PrincipalApp, PrincipalRole, PrincipalScope} {
		if !pt.Valid() {
			t.Fatalf("%s should be valid", pt)
		}
	}
	if PrincipalType("GROUP").Valid() {
		t.Fatal("GROUP should not be a valid principal type")
	}
}

func TestAccessTypeForMethod(t *testing.T) {
	tests := []struct {
		method string
		want   AccessType
	}{
		{"create", Write},
		{"upsert", Write},
		{"deleteById", Write},
		{"find", Read},
		{"findById", Read},
		{"count", Read},
		{"exists", Read},
		{"transfer", Execute},
		{"", Execute},
	}
	for _, tt := range tests {
		if got := AccessTypeForMethod(tt.method); got != tt.want {
			t.Errorf("AccessTypeForMethod(%q) = %s, want %s", tt.method, got, tt.want)
		}
	}
}
