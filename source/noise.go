package source

import (
	"context"

	"github.com/entropool/entropool/pool"
)

// BlockBytes is the fixed width of one hardware noise block.
const BlockBytes = 64

// NoiseTransport reads raw blocks from a hardware noise device.
type NoiseTransport interface {
	// ReadBlock returns the device's next block, exactly BlockBytes wide.
	ReadBlock(ctx context.Context) ([]byte, error)
}

// HardwareNoise collects whole blocks from a noise device.
type HardwareNoise struct {
	Transport NoiseTransport
}

func (h *HardwareNoise) Kind() pool.SourceKind { return pool.SourceHardwareNoise }

func (h *HardwareNoise) UnitBits() int { return 8 * BlockBytes }

func (h *HardwareNoise) Collect(ctx context.Context, targetBits int) ([]byte, int, error) {
	if err := checkTarget(targetBits); err != nil {
		return nil, 0, err
	}
	if h.Transport == nil {
		return nil, 0, unavailable("EP-SRC-001", "no noise transport configured", nil)
	}

	unit := 8 * BlockBytes
	blocks := (targetBits + unit - 1) / unit
	buf := make([]byte, 0, blocks*BlockBytes)
	for i := 0; i < blocks; i++ {
		if err := ctx.Err(); err != nil {
			pool.Zero(buf)
			return nil, 0, aborted(err)
		}
		block, err := h.Transport.ReadBlock(ctx)
		if err != nil {
			pool.Zero(buf)
			return nil, 0, abortedOrUnavailable("noise transport failed", err)
		}
		if len(block) != BlockBytes {
			pool.Zero(block)
			pool.Zero(buf)
			return nil, 0, unavailable("EP-SRC-002", "noise block has wrong width", nil)
		}
		buf = append(buf, block...)
	}
	return buf, blocks * unit, nil
}
