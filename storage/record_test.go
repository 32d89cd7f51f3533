package storage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/entropool/entropool/quality"
)

func validRecord() *Record {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &Record{
		Version:     RecordVersion,
		ID:          "550e8400-e29b-41d4-a716-446655440000",
		Source:      4,
		SizeBits:    128,
		EntropyBits: 120,
		Raw:         bytes.Repeat([]byte{0xa5}, 16),
		CreatedAt:   created,
		ExpiresAt:   created.Add(90 * 24 * time.Hour),
		Fingerprint: "a5a5a5a5a5a5a5a5",
		Label:       "POOL/SYSRNG/OSRNG:550e8400-e29b-41d4-a716-446655440000:2026-03-01#BITS=128&ENT=120|R",
	}
}

func TestValidateRecord(t *testing.T) {
	if err := ValidateRecord(validRecord()); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Record)
		wantMsg string
	}{
		{"NilRecord", nil, "nil record"},
		{"WrongVersion", func(r *Record) { r.Version = 2 }, "version"},
		{"EmptyID", func(r *Record) { r.ID = "" }, "missing id"},
		{"UnconsumedWithoutRaw", func(r *Record) { r.Raw = nil }, "without raw"},
		{"SizeBitsMismatch", func(r *Record) { r.SizeBits = 64 }, "does not match"},
		{"NegativeEntropyBits", func(r *Record) { r.EntropyBits = -1 }, "outside"},
		{"EntropyExceedsSize", func(r *Record) { r.EntropyBits = 129 }, "outside"},
		{"ZeroCreatedAt", func(r *Record) { r.CreatedAt = time.Time{} }, "missing createdAt"},
		{"ExpiryBeforeCreation", func(r *Record) { r.ExpiresAt = r.CreatedAt.Add(-time.Hour) }, "not after"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec *Record
			if tc.mutate != nil {
				rec = validRecord()
				tc.mutate(rec)
			}
			err := ValidateRecord(rec)
			if !IsInvalidRecord(err) {
				t.Fatalf("got err=%v want ErrInvalidRecord", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidateRecord_ConsumedWithoutRaw(t *testing.T) {
	rec := validRecord()
	rec.Raw = nil
	rec.Consumed = true
	rec.ConsumedAt = rec.CreatedAt.Add(time.Hour)
	if err := ValidateRecord(rec); err != nil {
		t.Fatalf("consumed record without raw rejected: %v", err)
	}
}

func TestCloneRecord_DeepCopy(t *testing.T) {
	rec := validRecord()
	rec.Lineage = []string{"p1", "p2"}
	rec.Metrics = &quality.Report{SizeBytes: 16, Entropy: 7.5, Tier: quality.TierFair}

	clone := CloneRecord(rec)
	clone.Raw[0] = 0x00
	clone.Lineage[0] = "other"
	clone.Metrics.Entropy = 0

	if rec.Raw[0] != 0xa5 {
		t.Fatalf("clone shares raw backing array")
	}
	if rec.Lineage[0] != "p1" {
		t.Fatalf("clone shares lineage backing array")
	}
	if rec.Metrics.Entropy != 7.5 {
		t.Fatalf("clone shares metrics pointer")
	}
	if CloneRecord(nil) != nil {
		t.Fatalf("CloneRecord(nil) should be nil")
	}
}

func TestEncodeDecodeRecord(t *testing.T) {
	rec := validRecord()
	rec.Lineage = []string{"a", "b"}
	rec.Metrics = &quality.Report{
		SizeBytes: 16, Entropy: 3.9, ChiSquare: 12.5, ChiPValue: 0.42,
		Mean: 165, MonteCarloPi: 3.1, SerialCorr: -0.002, Tier: quality.TierPoor,
	}

	enc, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	got, err := DecodeRecord(enc)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}

	if got.ID != rec.ID || got.Source != rec.Source || got.SizeBits != rec.SizeBits {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, rec)
	}
	if !bytes.Equal(got.Raw, rec.Raw) {
		t.Fatalf("raw mismatch after round trip")
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) || !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("time mismatch after round trip")
	}
	if got.Metrics == nil || got.Metrics.Tier != quality.TierPoor || got.Metrics.ChiPValue != 0.42 {
		t.Fatalf("metrics mismatch after round trip: %+v", got.Metrics)
	}
	if len(got.Lineage) != 2 || got.Lineage[0] != "a" {
		t.Fatalf("lineage mismatch after round trip: %v", got.Lineage)
	}
}

func TestEncodeRecord_Deterministic(t *testing.T) {
	rec := validRecord()
	first, err := EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	for i := 0; i < 25; i++ {
		got, err := EncodeRecord(rec)
		if err != nil {
			t.Fatalf("EncodeRecord(%d) failed: %v", i, err)
		}
		if !bytes.Equal(got, first) {
			t.Fatalf("encoding differs on run %d", i)
		}
	}
}

func TestDecodeRecord_Garbage(t *testing.T) {
	for _, in := range [][]byte{nil, {}, {0xff, 0x00}, []byte("not cbor")} {
		if _, err := DecodeRecord(in); !IsInvalidRecord(err) {
			t.Fatalf("DecodeRecord(%x): got err=%v want ErrInvalidRecord", in, err)
		}
	}
}

func TestDecodeRecord_WrongVersion(t *testing.T) {
	enc, err := EncodeRecord(validRecord())
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	// The canonical map opens with key 1 (version) followed by its value.
	idx := bytes.Index(enc, []byte{0x01, 0x01})
	if idx < 0 {
		t.Fatalf("version key/value pair not found in envelope")
	}
	enc[idx+1] = 0x02
	if _, err := DecodeRecord(enc); !IsInvalidRecord(err) {
		t.Fatalf("decode of version-2 envelope: got err=%v want ErrInvalidRecord", err)
	}
}
