package source

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/entropool/entropool/pool"
)

// fakeDevice answers challenges with responses derived from the round
// counter, so consecutive responses differ unless stuck is set.
type fakeDevice struct {
	round   int
	nonces  [][]byte
	width   int
	stuck   bool
	err     error
	onRound func(round int)
}

func (d *fakeDevice) Challenge(ctx context.Context, nonce []byte) ([]byte, error) {
	d.nonces = append(d.nonces, append([]byte(nil), nonce...))
	if d.onRound != nil {
		d.onRound(d.round)
	}
	if d.err != nil {
		return nil, d.err
	}
	width := d.width
	if width == 0 {
		width = ResponseBytes
	}
	resp := make([]byte, width)
	for i := range resp {
		if d.stuck {
			resp[i] = 0x5a
		} else {
			resp[i] = byte(d.round*31 + i)
		}
	}
	d.round++
	return resp, nil
}

func TestHardwareChallenge_SingleRound(t *testing.T) {
	dev := &fakeDevice{}
	h := &HardwareChallenge{Transport: dev}

	data, actual, err := h.Collect(context.Background(), 160)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(data) != ResponseBytes || actual != ResponseBits {
		t.Fatalf("got %d bytes / %d bits, want %d / %d", len(data), actual, ResponseBytes, ResponseBits)
	}
	if len(dev.nonces) != 1 || len(dev.nonces[0]) != NonceBytes {
		t.Fatalf("nonce shape: %d nonces, first %d bytes", len(dev.nonces), len(dev.nonces[0]))
	}
	if h.Kind() != pool.SourceHardwareChallenge || h.UnitBits() != 160 {
		t.Fatalf("contract metadata wrong: %v/%d", h.Kind(), h.UnitBits())
	}
}

func TestHardwareChallenge_RoundsUpToWholeResponses(t *testing.T) {
	dev := &fakeDevice{}
	h := &HardwareChallenge{Transport: dev}

	data, actual, err := h.Collect(context.Background(), 161)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(data) != 2*ResponseBytes || actual != 2*ResponseBits {
		t.Fatalf("got %d bytes / %d bits, want 40 / 320", len(data), actual)
	}
	if bytes.Equal(dev.nonces[0], dev.nonces[1]) {
		t.Fatalf("nonces repeated across rounds")
	}
}

func TestHardwareChallenge_NoTransport(t *testing.T) {
	h := &HardwareChallenge{}
	_, _, err := h.Collect(context.Background(), 160)
	if !pool.IsKind(err, pool.KindHardwareUnavailable) {
		t.Fatalf("got err=%v want KindHardwareUnavailable", err)
	}
	if got := pool.RuleID(err); got != "EP-SRC-001" {
		t.Fatalf("rule: got %q", got)
	}
}

func TestHardwareChallenge_WrongWidth(t *testing.T) {
	h := &HardwareChallenge{Transport: &fakeDevice{width: 19}}
	_, _, err := h.Collect(context.Background(), 160)
	if !pool.IsKind(err, pool.KindHardwareUnavailable) {
		t.Fatalf("got err=%v want KindHardwareUnavailable", err)
	}
	if got := pool.RuleID(err); got != "EP-SRC-002" {
		t.Fatalf("rule: got %q", got)
	}
}

func TestHardwareChallenge_StuckDevice(t *testing.T) {
	h := &HardwareChallenge{Transport: &fakeDevice{stuck: true}}

	// One response is fine; the repeat on round two is the tell.
	_, _, err := h.Collect(context.Background(), 320)
	if !pool.IsKind(err, pool.KindHardwareUnavailable) {
		t.Fatalf("got err=%v want KindHardwareUnavailable", err)
	}
	if got := pool.RuleID(err); got != "EP-SRC-003" {
		t.Fatalf("rule: got %q", got)
	}
}

func TestHardwareChallenge_SingleRoundStuckUndetectable(t *testing.T) {
	h := &HardwareChallenge{Transport: &fakeDevice{stuck: true}}
	data, _, err := h.Collect(context.Background(), 160)
	if err != nil {
		t.Fatalf("single round should pass: %v", err)
	}
	if len(data) != ResponseBytes {
		t.Fatalf("got %d bytes", len(data))
	}
}

func TestHardwareChallenge_CancelMidCollection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dev := &fakeDevice{}
	dev.onRound = func(round int) {
		if round == 0 {
			cancel()
		}
	}
	h := &HardwareChallenge{Transport: dev}

	data, _, err := h.Collect(ctx, 480)
	if !pool.IsKind(err, pool.KindAborted) {
		t.Fatalf("got err=%v want KindAborted", err)
	}
	if got := pool.RuleID(err); got != "EP-SRC-010" {
		t.Fatalf("rule: got %q", got)
	}
	if data != nil {
		t.Fatalf("aborted collection returned data")
	}
	// The partial buffer was wiped before returning; the device's own copy
	// is the only survivor and belongs to the fake.
	if dev.round != 1 {
		t.Fatalf("device answered %d rounds, want 1", dev.round)
	}
}

func TestHardwareChallenge_TransportError(t *testing.T) {
	cause := errors.New("usb detached")
	h := &HardwareChallenge{Transport: &fakeDevice{err: cause}}

	_, _, err := h.Collect(context.Background(), 160)
	if !pool.IsKind(err, pool.KindHardwareUnavailable) {
		t.Fatalf("got err=%v want KindHardwareUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

func TestHardwareChallenge_TransportCancellation(t *testing.T) {
	h := &HardwareChallenge{Transport: &fakeDevice{err: context.Canceled}}
	_, _, err := h.Collect(context.Background(), 160)
	if !pool.IsKind(err, pool.KindAborted) {
		t.Fatalf("got err=%v want KindAborted", err)
	}
}
