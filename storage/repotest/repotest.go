// Package repotest holds the conformance suite every Repository
// implementation must pass.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/entropool/entropool/storage"
)

// NewRepository constructs a fresh, empty Repository instance for a test.
// The returned Repository MUST be isolated from other tests.
type NewRepository func(t *testing.T) storage.Repository

func testRecord(id string, createdAt time.Time) *storage.Record {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i*7 + len(id))
	}
	return &storage.Record{
		Version:     storage.RecordVersion,
		ID:          id,
		Source:      1,
		SizeBits:    256,
		EntropyBits: 250,
		Raw:         raw,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(90 * 24 * time.Hour),
		Fingerprint: "00ff00ff00ff00ff",
	}
}

func RunConformance(t *testing.T, newRepo NewRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("CreateGetRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		want := testRecord("pool-a", base)

		if err := repo.Create(ctx, want); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		got, err := repo.Get(ctx, "pool-a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != want.ID || got.SizeBits != want.SizeBits || got.EntropyBits != want.EntropyBits {
			t.Fatalf("Get mismatch: got %+v want %+v", got, want)
		}
		if string(got.Raw) != string(want.Raw) {
			t.Fatalf("Get raw mismatch")
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Fatalf("Get time mismatch: got %v/%v want %v/%v",
				got.CreatedAt, got.ExpiresAt, want.CreatedAt, want.ExpiresAt)
		}

		// Returned records are copies: mutating one must not leak back.
		got.Raw[0] ^= 0xff
		again, err := repo.Get(ctx, "pool-a")
		if err != nil {
			t.Fatalf("Get(2) failed: %v", err)
		}
		if again.Raw[0] != want.Raw[0] {
			t.Fatalf("Get returned aliased raw material")
		}
	})

	t.Run("CreateCopiesInput", func(t *testing.T) {
		repo := newRepo(t)
		rec := testRecord("pool-b", base)

		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		rec.Raw[0] ^= 0xff
		got, err := repo.Get(ctx, "pool-b")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Raw[0] == rec.Raw[0] {
			t.Fatalf("Create aliased caller's raw material")
		}
	})

	t.Run("CreateRejectsInvalid", func(t *testing.T) {
		repo := newRepo(t)
		rec := testRecord("", base)

		err := repo.Create(ctx, rec)
		if !storage.IsInvalidRecord(err) {
			t.Fatalf("Create empty ID: got err=%v want ErrInvalidRecord", err)
		}
	})

	t.Run("CreateDuplicateID", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, testRecord("pool-c", base)); err != nil {
			t.Fatalf("Create(1) failed: %v", err)
		}
		err := repo.Create(ctx, testRecord("pool-c", base.Add(time.Hour)))
		if !storage.IsAlreadyExists(err) {
			t.Fatalf("Create(2): got err=%v want ErrAlreadyExists", err)
		}
	})

	t.Run("GetUnknownID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "no-such-pool")
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("MarkConsumedOnce", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, testRecord("pool-d", base)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		at := base.Add(2 * time.Hour)
		if err := repo.MarkConsumed(ctx, "pool-d", at); err != nil {
			t.Fatalf("MarkConsumed failed: %v", err)
		}

		got, err := repo.Get(ctx, "pool-d")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !got.Consumed {
			t.Fatalf("record not marked consumed")
		}
		if len(got.Raw) != 0 {
			t.Fatalf("raw material survived consumption")
		}
		if !got.ConsumedAt.Equal(at) {
			t.Fatalf("ConsumedAt: got %v want %v", got.ConsumedAt, at)
		}

		err = repo.MarkConsumed(ctx, "pool-d", at.Add(time.Minute))
		if !storage.IsAlreadyConsumed(err) {
			t.Fatalf("MarkConsumed(2): got err=%v want ErrAlreadyConsumed", err)
		}
	})

	t.Run("MarkConsumedUnknownID", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.MarkConsumed(ctx, "no-such-pool", base)
		if !storage.IsNotFound(err) {
			t.Fatalf("MarkConsumed missing: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("ConcurrentSingleWinner", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Create(ctx, testRecord("pool-e", base)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		const racers = 32
		errs := make([]error, racers)
		var start, done sync.WaitGroup
		start.Add(1)
		done.Add(racers)
		for i := 0; i < racers; i++ {
			go func(i int) {
				defer done.Done()
				start.Wait()
				errs[i] = repo.MarkConsumed(ctx, "pool-e", base.Add(time.Hour))
			}(i)
		}
		start.Done()
		done.Wait()

		winners := 0
		for i, err := range errs {
			switch {
			case err == nil:
				winners++
			case storage.IsAlreadyConsumed(err):
			default:
				t.Fatalf("racer %d: unexpected error %v", i, err)
			}
		}
		if winners != 1 {
			t.Fatalf("winners: got %d want exactly 1", winners)
		}
	})

	t.Run("ListOrderAndFilter", func(t *testing.T) {
		repo := newRepo(t)
		// Deliberately created out of order; "pool-g" and "pool-h" share a
		// timestamp so the ID tiebreak is exercised.
		for _, rec := range []*storage.Record{
			testRecord("pool-h", base.Add(time.Hour)),
			testRecord("pool-f", base),
			testRecord("pool-g", base.Add(time.Hour)),
		} {
			if err := repo.Create(ctx, rec); err != nil {
				t.Fatalf("Create %s failed: %v", rec.ID, err)
			}
		}
		if err := repo.MarkConsumed(ctx, "pool-g", base.Add(2*time.Hour)); err != nil {
			t.Fatalf("MarkConsumed failed: %v", err)
		}

		all, err := repo.List(ctx, false)
		if err != nil {
			t.Fatalf("List(false) failed: %v", err)
		}
		gotIDs := make([]string, len(all))
		for i, rec := range all {
			gotIDs[i] = rec.ID
			if len(rec.Raw) != 0 {
				t.Fatalf("List leaked raw material for %s", rec.ID)
			}
		}
		wantIDs := []string{"pool-f", "pool-g", "pool-h"}
		if len(gotIDs) != len(wantIDs) {
			t.Fatalf("List(false): got %v want %v", gotIDs, wantIDs)
		}
		for i := range wantIDs {
			if gotIDs[i] != wantIDs[i] {
				t.Fatalf("List(false) order: got %v want %v", gotIDs, wantIDs)
			}
		}

		live, err := repo.List(ctx, true)
		if err != nil {
			t.Fatalf("List(true) failed: %v", err)
		}
		if len(live) != 2 || live[0].ID != "pool-f" || live[1].ID != "pool-h" {
			ids := make([]string, len(live))
			for i, rec := range live {
				ids[i] = rec.ID
			}
			t.Fatalf("List(true): got %v want [pool-f pool-h]", ids)
		}
	})
}
