package source

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"

	"github.com/entropool/entropool/pool"
)

const (
	// ResponseBytes is the fixed width of one challenge response.
	ResponseBytes = 20
	// ResponseBits is the entropy credited per response.
	ResponseBits = 8 * ResponseBytes
	// NonceBytes is the width of the fresh nonce sent with each round.
	NonceBytes = 16
)

// ChallengeTransport talks to a challenge-response hardware device.
type ChallengeTransport interface {
	// Challenge submits a fresh nonce and returns the device's response.
	// The response must be exactly ResponseBytes wide.
	Challenge(ctx context.Context, nonce []byte) ([]byte, error)
}

// HardwareChallenge collects by repeatedly challenging a device with
// fresh nonces. A response of the wrong width, or two consecutive
// identical responses, means the device is absent or stuck; both are
// surfaced as KindHardwareUnavailable.
type HardwareChallenge struct {
	Transport ChallengeTransport

	// Rand supplies challenge nonces; nil means crypto/rand.Reader.
	Rand io.Reader
}

func (h *HardwareChallenge) Kind() pool.SourceKind { return pool.SourceHardwareChallenge }

func (h *HardwareChallenge) UnitBits() int { return ResponseBits }

func (h *HardwareChallenge) Collect(ctx context.Context, targetBits int) ([]byte, int, error) {
	if err := checkTarget(targetBits); err != nil {
		return nil, 0, err
	}
	if h.Transport == nil {
		return nil, 0, unavailable("EP-SRC-001", "no challenge transport configured", nil)
	}

	rounds := (targetBits + ResponseBits - 1) / ResponseBits
	buf := make([]byte, 0, rounds*ResponseBytes)
	var prev []byte
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			pool.Zero(buf)
			return nil, 0, aborted(err)
		}

		nonce := make([]byte, NonceBytes)
		if _, err := io.ReadFull(h.rand(), nonce); err != nil {
			pool.Zero(buf)
			return nil, 0, unavailable("EP-SRC-001", "nonce generation failed", err)
		}
		resp, err := h.Transport.Challenge(ctx, nonce)
		if err != nil {
			pool.Zero(buf)
			return nil, 0, abortedOrUnavailable("challenge transport failed", err)
		}
		if len(resp) != ResponseBytes {
			pool.Zero(resp)
			pool.Zero(buf)
			return nil, 0, unavailable("EP-SRC-002", "challenge response has wrong width", nil)
		}
		if prev != nil && bytes.Equal(prev, resp) {
			pool.Zero(resp)
			pool.Zero(buf)
			return nil, 0, unavailable("EP-SRC-003", "device returned identical consecutive responses", nil)
		}
		prev = resp
		buf = append(buf, resp...)
	}
	return buf, rounds * ResponseBits, nil
}

func (h *HardwareChallenge) rand() io.Reader {
	if h.Rand != nil {
		return h.Rand
	}
	return rand.Reader
}
