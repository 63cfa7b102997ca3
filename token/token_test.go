package token

import (
	"testing"
	"time"

	"github.com/ostium-io/ostium/id"
)

func TestIsAnonymous(t *testing.T) {
	var nilToken *Token
	if !nilToken.IsAnonymous() {
		t.Fatal("nil token is anonymous")
	}
	if !Anonymous.IsAnonymous() {
		t.Fatal("Anonymous is anonymous")
	}
	if (&Token{ID: id.NewTokenID()}).IsAnonymous() == false {
		t.Fatal("a token without identity is anonymous")
	}
	if (&Token{UserID: "u1"}).IsAnonymous() {
		t.Fatal("a user token is not anonymous")
	}
	if (&Token{AppID: "a1"}).IsAnonymous() {
		t.Fatal("an app token is not anonymous")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	if (&Token{CreatedAt: now.Add(-24 * time.Hour)}).Expired(now) {
		t.Fatal("zero TTL never expires")
	}
	if (&Token{TTL: time.Hour}).Expired(now) {
		t.Fatal("zero CreatedAt never expires")
	}
	if (&Token{TTL: time.Hour, CreatedAt: now.Add(-time.Minute)}).Expired(now) {
		t.Fatal("token within TTL should be live")
	}
	if !(&Token{TTL: time.Minute, CreatedAt: now.Add(-time.Hour)}).Expired(now) {
		t.Fatal("token past TTL should be expired")
	}
}

func TestHasScope(t *testing.T) {
	tok := &Token{Scopes: []string{"reports:read", "reports:write"}}
	if !tok.HasScope("reports:read") {
		t.Fatal("scope should be present")
	}
	if tok.HasScope("admin") {
		t.Fatal("missing scope should not match")
	}
	if (&Token{}).HasScope("anything") {
		t.Fatal("scopeless token holds nothing")
	}
}
