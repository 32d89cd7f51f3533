package label

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Canonical(t *testing.T) {
	l, err := Parse("POOL/SYSRNG/OSRNG:a1:2026-08-23#BITS=256&ENT=256|W")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if l.Category != "POOL" || l.Type != "SYSRNG" || l.Algorithm != "OSRNG" {
		t.Fatalf("bad class: %s/%s/%s", l.Category, l.Type, l.Algorithm)
	}
	if l.Data != "a1" || l.Date != "2026-08-23" {
		t.Fatalf("bad data/date: %s %s", l.Data, l.Date)
	}
	if v, ok := l.Get("BITS"); !ok || v != "256" {
		t.Fatalf("Get(BITS) = %q, %v", v, ok)
	}
	if _, ok := l.Get("MISSING"); ok {
		t.Fatalf("Get(MISSING) reported present")
	}
}

func TestRenderParse_RoundTrip(t *testing.T) {
	in := &Label{
		Category:  "POOL",
		Type:      "DICE",
		Algorithm: "D6",
		Data:      "550e8400-e29b-41d4-a716-446655440000",
		Date:      "2026-08-23",
		Params:    []Param{{Key: "ENT", Value: "103"}, {Key: "BITS", Value: "112"}},
	}
	s, err := Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(s, "#BITS=112&ENT=103|") {
		t.Fatalf("params not in canonical order: %s", s)
	}
	back, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(rendered): %v", err)
	}
	s2, err := Render(back)
	if err != nil {
		t.Fatalf("Render(parsed): %v", err)
	}
	if s2 != s {
		t.Fatalf("round trip not byte-identical:\n%s\n%s", s, s2)
	}
}

func TestCanonicalize_SortsShuffledParams(t *testing.T) {
	shuffled := "POOL/SYSRNG/OSRNG:a1:2026-08-23#ENT=256&BITS=256|W"
	canon, err := Canonicalize(shuffled)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := "POOL/SYSRNG/OSRNG:a1:2026-08-23#BITS=256&ENT=256|W"
	if canon != want {
		t.Fatalf("Canonicalize = %s, want %s", canon, want)
	}
	// Canonical input is a fixed point.
	again, err := Canonicalize(canon)
	if err != nil {
		t.Fatalf("Canonicalize(canon): %v", err)
	}
	if again != canon {
		t.Fatalf("canonical form is not a fixed point")
	}
}

func TestParse_NoParams(t *testing.T) {
	l, err := Parse("POOL/SYSRNG/OSRNG:a1:2026-08-23#|T")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(l.Params) != 0 {
		t.Fatalf("expected no params, got %v", l.Params)
	}
}

func TestBuilders(t *testing.T) {
	date := time.Date(2026, 8, 23, 14, 30, 0, 0, time.UTC)

	s, err := ForPool("SYSRNG", "OSRNG", "a1", date, Param{Key: KeyBits, Value: "256"})
	if err != nil {
		t.Fatalf("ForPool: %v", err)
	}
	if s != "POOL/SYSRNG/OSRNG:a1:2026-08-23#BITS=256|D" {
		t.Fatalf("ForPool = %s", s)
	}

	s, err = ForSalt("MIX", "HKDF-SHA256", "pool-1", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ForSalt: %v", err)
	}
	if s != "SALT/MIX/HKDF-SHA256:pool-1:2026-01-02#|1" {
		t.Fatalf("ForSalt = %s", s)
	}

	s, err = ForIdentifier("UN1", "HKDF-SHA256", "github.com", date, Param{Key: KeyLength, Value: "16"})
	if err != nil {
		t.Fatalf("ForIdentifier: %v", err)
	}
	if _, err := Parse(s); err != nil {
		t.Fatalf("ForIdentifier output does not parse: %v", err)
	}
}

func TestCivilDate_UTC(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*3600)
	// 2026-08-24 02:00 +09 is still 2026-08-23 in UTC.
	got := CivilDate(time.Date(2026, 8, 24, 2, 0, 0, 0, east))
	if got != "2026-08-23" {
		t.Fatalf("CivilDate = %s, want 2026-08-23", got)
	}
}

func TestRender_RejectsOversized(t *testing.T) {
	l := &Label{
		Category:  "POOL",
		Type:      "SYSRNG",
		Algorithm: "OSRNG",
		Data:      strings.Repeat("a", 64),
		Date:      "2026-08-23",
	}
	for i := 0; i < 16; i++ {
		l.Params = append(l.Params, Param{Key: "K" + string(rune('A'+i)), Value: strings.Repeat("v", 20)})
	}
	_, err := Render(l)
	if err == nil {
		t.Fatalf("expected oversized label to fail")
	}
	if RuleID(err) != "EPL-REN-002" {
		t.Fatalf("expected EPL-REN-002, got %s", RuleID(err))
	}
}

func TestRender_NilLabel(t *testing.T) {
	_, err := Render(nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindRender) {
		t.Fatalf("expected KindRender, got %v", err)
	}
}
