package audit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/entropool/entropool/chainid"
)

// Entry is one persisted trail record. Prev is the CID of the previous
// entry's canonical encoding ("" for the first entry), so the file forms
// a hash chain: altering any entry breaks every later link.
type Entry struct {
	Seq   uint64 `cbor:"1,keyasint"`
	Prev  string `cbor:"2,keyasint,omitempty"`
	Event Event  `cbor:"3,keyasint"`
}

var entryEncMode cbor.EncMode

var entryDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	entryEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("audit: entry CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	entryDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("audit: entry CBOR decoder mode: %v", err))
	}
}

// Trail is an append-only, hash-chained event file.
//
// Entries are concatenated canonical CBOR maps; CBOR is self-delimiting,
// so the file needs no framing. Record never blocks the caller on a write
// error: the first failure is kept and every later Record is dropped, so
// a broken trail stays verifiably broken instead of growing gaps.
type Trail struct {
	mu     sync.Mutex
	f      *os.File
	seq    uint64
	head   string
	err    error
	closed bool
}

// OpenTrail opens or creates the trail file at path and replays existing
// entries to re-establish the chain head.
func OpenTrail(path string) (*Trail, error) {
	entries, err := ReadAll(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	t := &Trail{}
	for _, e := range entries {
		enc, err := entryEncMode.Marshal(e)
		if err != nil {
			return nil, err
		}
		t.seq = e.Seq
		t.head = chainid.String(enc)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	t.f = f
	return t, nil
}

// Append writes one event as the next chain entry.
func (t *Trail) Append(ev Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("audit: trail closed")
	}
	if t.err != nil {
		return t.err
	}

	e := Entry{Seq: t.seq + 1, Prev: t.head, Event: ev}
	enc, err := entryEncMode.Marshal(e)
	if err != nil {
		t.err = err
		return err
	}
	if _, err := t.f.Write(enc); err != nil {
		t.err = err
		return err
	}
	t.seq = e.Seq
	t.head = chainid.String(enc)
	return nil
}

// Record implements Recorder. Write failures are sticky; check Err.
func (t *Trail) Record(ev Event) {
	_ = t.Append(ev)
}

// Err returns the first write failure, if any.
func (t *Trail) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Head returns the CID of the latest entry, or "" for an empty trail.
func (t *Trail) Head() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.head
}

// Close is idempotent.
func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.f.Close()
}

var _ Recorder = (*Trail)(nil)

// ReadAll decodes every entry in a trail file without verifying the
// chain. A missing file surfaces as os.ErrNotExist.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeEntries(f)
}

func decodeEntries(r io.Reader) ([]Entry, error) {
	dec := entryDecMode.NewDecoder(r)
	var out []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("audit: entry %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
}

// Verify re-reads a trail file and recomputes its hash chain. It returns
// the number of verified entries; the error names the first broken link.
func Verify(path string) (int, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return 0, err
	}
	return verifyEntries(entries)
}

func verifyEntries(entries []Entry) (int, error) {
	prev := ""
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			return i, fmt.Errorf("audit: entry %d: sequence %d out of order", i+1, e.Seq)
		}
		if e.Prev != prev {
			return i, fmt.Errorf("audit: entry %d: chain broken (prev link mismatch)", e.Seq)
		}
		enc, err := entryEncMode.Marshal(e)
		if err != nil {
			return i, err
		}
		prev = chainid.String(enc)
	}
	return len(entries), nil
}
