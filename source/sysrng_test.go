package source

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/entropool/entropool/pool"
)

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestSystemRNG_Collect(t *testing.T) {
	pattern := make([]byte, 64)
	for i := range pattern {
		pattern[i] = byte(i * 3)
	}
	s := &SystemRNG{Reader: bytes.NewReader(pattern)}

	data, actual, err := s.Collect(context.Background(), 100)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(data) != 13 || actual != 104 {
		t.Fatalf("got %d bytes / %d bits, want 13 / 104", len(data), actual)
	}
	if !bytes.Equal(data, pattern[:13]) {
		t.Fatalf("data mismatch")
	}
	if s.Kind() != pool.SourceSystemRNG || s.UnitBits() != 8 {
		t.Fatalf("contract metadata wrong: %v/%d", s.Kind(), s.UnitBits())
	}
}

func TestSystemRNG_DefaultsToOSRNG(t *testing.T) {
	s := &SystemRNG{}
	data, actual, err := s.Collect(context.Background(), 64)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(data) != 8 || actual != 64 {
		t.Fatalf("got %d bytes / %d bits", len(data), actual)
	}
}

func TestSystemRNG_TargetValidation(t *testing.T) {
	s := &SystemRNG{}
	for _, target := range []int{0, -8} {
		_, _, err := s.Collect(context.Background(), target)
		if !pool.IsKind(err, pool.KindEncoding) {
			t.Fatalf("Collect(%d): got err=%v want KindEncoding", target, err)
		}
		if got := pool.RuleID(err); got != "EP-SRC-004" {
			t.Fatalf("Collect(%d) rule: got %q", target, got)
		}
	}
}

func TestSystemRNG_ReadFailure(t *testing.T) {
	cause := errors.New("entropy well is dry")
	s := &SystemRNG{Reader: failingReader{err: cause}}

	_, _, err := s.Collect(context.Background(), 128)
	if !pool.IsKind(err, pool.KindHardwareUnavailable) {
		t.Fatalf("got err=%v want KindHardwareUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

func TestSystemRNG_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &SystemRNG{}

	_, _, err := s.Collect(ctx, 64)
	if !pool.IsKind(err, pool.KindAborted) {
		t.Fatalf("got err=%v want KindAborted", err)
	}
}
