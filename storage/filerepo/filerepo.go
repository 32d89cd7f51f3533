// Package filerepo is a local filesystem-backed pool record repository.
package filerepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/entropool/entropool/storage"
)

const recordExt = ".pool"

// Repo stores one CBOR envelope per record under root, sharded by the
// first two characters of the record ID. Files holding unconsumed raw
// material are mode 0600.
//
// Repo serializes its own writers; it must be the only process mutating
// root. This implementation is offline and deterministic: it never uses
// the network and never depends on wall-clock time.
type Repo struct {
	root string
	mu   sync.Mutex
}

// New constructs a file repository rooted at root. The directory will be
// created if needed.
func New(root string) (*Repo, error) {
	if root == "" {
		return nil, errors.New("filerepo: root directory is required")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &Repo{root: root}, nil
}

func (r *Repo) Create(ctx context.Context, rec *storage.Record) error {
	enc, err := storage.EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := checkID(rec.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.pathFor(rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return storage.ErrAlreadyExists
		}
		return err
	}
	if _, err := f.Write(enc); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*storage.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	rec, err := r.read(id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repo) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.read(id)
	if err != nil {
		return err
	}
	if rec.Consumed {
		return storage.ErrAlreadyConsumed
	}
	for i := range rec.Raw {
		rec.Raw[i] = 0
	}
	rec.Raw = nil
	rec.Consumed = true
	rec.ConsumedAt = at.UTC()

	// The rewritten envelope carries no raw field; the replace is atomic
	// so readers only ever see a whole record.
	return r.replace(rec)
}

func (r *Repo) List(ctx context.Context, unconsumedOnly bool) ([]*storage.Record, error) {
	shards, err := os.ReadDir(r.root)
	if err != nil {
		return nil, err
	}
	var out []*storage.Record
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(r.root, shard.Name()))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			name := file.Name()
			if file.IsDir() || !strings.HasSuffix(name, recordExt) {
				continue
			}
			rec, err := r.read(strings.TrimSuffix(name, recordExt))
			if err != nil {
				return nil, fmt.Errorf("filerepo: reading %s: %w", name, err)
			}
			if unconsumedOnly && rec.Consumed {
				continue
			}
			rec.Raw = nil
			out = append(out, rec)
		}
	}
	storage.SortRecords(out)
	return out, nil
}

func (r *Repo) read(id string) (*storage.Record, error) {
	b, err := os.ReadFile(r.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	rec, err := storage.DecodeRecord(b)
	if err != nil {
		return nil, err
	}
	if rec.ID != id {
		return nil, fmt.Errorf("%w: envelope id %q under file %q", storage.ErrInvalidRecord, rec.ID, id)
	}
	return rec, nil
}

// replace writes rec next to its final path and renames it into place.
func (r *Repo) replace(rec *storage.Record) error {
	enc, err := storage.EncodeRecord(rec)
	if err != nil {
		return err
	}
	path := r.pathFor(rec.ID)
	tmp, err := os.CreateTemp(filepath.Dir(path), rec.ID+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(enc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (r *Repo) pathFor(id string) string {
	if len(id) < 2 {
		return filepath.Join(r.root, "__", id+recordExt)
	}
	return filepath.Join(r.root, id[:2], id+recordExt)
}

// checkID rejects IDs that would escape the shard layout. Pool IDs are
// UUID strings in practice; anything with a path separator is hostile.
func checkID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing id", storage.ErrInvalidRecord)
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		default:
			return fmt.Errorf("%w: id %q contains %q", storage.ErrInvalidRecord, id, c)
		}
	}
	return nil
}

var _ storage.Repository = (*Repo)(nil)
