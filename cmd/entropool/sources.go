package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/entropool/entropool/source"
)

// stdinRolls prompts for physical die faces on stdin, one per line.
// User-paced: each prompt blocks until a line arrives or the context
// ends.
type stdinRolls struct {
	in     *bufio.Reader
	prompt io.Writer
	n      int
}

func newStdinRolls(in io.Reader, prompt io.Writer) *stdinRolls {
	return &stdinRolls{in: bufio.NewReader(in), prompt: prompt}
}

func (r *stdinRolls) NextRoll(ctx context.Context) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		r.n++
		fmt.Fprintf(r.prompt, "roll %d (1-6): ", r.n)
		line, err := r.in.ReadString('\n')
		if err != nil {
			return 0, err
		}
		face, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || face < 1 || face > 6 {
			fmt.Fprintln(r.prompt, "enter a single face, 1 through 6")
			r.n--
			continue
		}
		return face, nil
	}
}

// deviceNoise reads fixed blocks from a raw noise character device.
type deviceNoise struct {
	f *os.File
}

func (d *deviceNoise) ReadBlock(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	block := make([]byte, source.BlockBytes)
	if _, err := io.ReadFull(d.f, block); err != nil {
		return nil, err
	}
	return block, nil
}

// deviceChallenge writes each nonce to a challenge-response device and
// reads back the fixed-width response.
type deviceChallenge struct {
	f *os.File
}

func (d *deviceChallenge) Challenge(ctx context.Context, nonce []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := d.f.Write(nonce); err != nil {
		return nil, err
	}
	resp := make([]byte, source.ResponseBytes)
	if _, err := io.ReadFull(d.f, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// buildRegistry wires every source the invocation can serve: the system
// RNG and stdin dice always, hardware sources only when their device
// paths were given. The returned cleanup closes any opened devices.
func buildRegistry(noiseDevice, challengeDevice string, stdin io.Reader, prompt io.Writer) (*source.Registry, func(), error) {
	reg := source.NewRegistry()
	reg.MustRegister(&source.SystemRNG{})
	reg.MustRegister(&source.Dice{Rolls: newStdinRolls(stdin, prompt)})

	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	if noiseDevice != "" {
		f, err := os.Open(noiseDevice)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open noise device: %w", err)
		}
		closers = append(closers, f.Close)
		reg.MustRegister(&source.HardwareNoise{Transport: &deviceNoise{f: f}})
	}
	if challengeDevice != "" {
		f, err := os.OpenFile(challengeDevice, os.O_RDWR, 0)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open challenge device: %w", err)
		}
		closers = append(closers, f.Close)
		reg.MustRegister(&source.HardwareChallenge{Transport: &deviceChallenge{f: f}})
	}
	return reg, cleanup, nil
}
