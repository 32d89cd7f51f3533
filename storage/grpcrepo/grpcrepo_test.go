package grpcrepo

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/entropool/entropool/storage"
	"github.com/entropool/entropool/storage/repotest"
)

// bufnetClient wires a Client to an in-memory server over bufconn.
func bufnetClient(t *testing.T, repo storage.Repository) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterRepositoryServer(srv, &Server{Repo: repo})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewRepositoryClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCRepo_Conformance(t *testing.T) {
	repotest.RunConformance(t, func(t *testing.T) storage.Repository {
		return bufnetClient(t, storage.NewMemory())
	})
}

func TestGRPCRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := bufnetClient(t, storage.NewMemory())

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := &storage.Record{
		Version:     storage.RecordVersion,
		ID:          "9f2c1a00-1111-2222-3333-444455556666",
		Source:      2,
		SizeBits:    24,
		EntropyBits: 15,
		Raw:         []byte{0x07, 0x49, 0x00},
		CreatedAt:   created,
		ExpiresAt:   created.Add(90 * 24 * time.Hour),
	}
	if err := client.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := client.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SizeBits != 24 || got.EntropyBits != 15 || string(got.Raw) != string(rec.Raw) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := client.MarkConsumed(ctx, rec.ID, created.Add(time.Hour)); err != nil {
		t.Fatalf("MarkConsumed: %v", err)
	}
	err = client.MarkConsumed(ctx, rec.ID, created.Add(2*time.Hour))
	if !storage.IsAlreadyConsumed(err) {
		t.Fatalf("MarkConsumed(2): got err=%v want ErrAlreadyConsumed", err)
	}

	recs, err := client.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != rec.ID || len(recs[0].Raw) != 0 {
		t.Fatalf("List: got %+v", recs)
	}
}

func TestGRPCRepo_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	client := bufnetClient(t, storage.NewMemory())

	if _, err := client.Get(ctx, "missing-id"); !storage.IsNotFound(err) {
		t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
	}
	if err := client.MarkConsumed(ctx, "missing-id", time.Now()); !storage.IsNotFound(err) {
		t.Fatalf("MarkConsumed missing: got err=%v want ErrNotFound", err)
	}
	if err := client.Create(ctx, &storage.Record{Version: storage.RecordVersion}); !storage.IsInvalidRecord(err) {
		t.Fatalf("Create invalid: got err=%v want ErrInvalidRecord", err)
	}
}
