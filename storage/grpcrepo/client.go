package grpcrepo

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/entropool/entropool/storage"
)

// Client implements storage.Repository over the PoolRepository gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client RepositoryClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewRepositoryClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Create(ctx context.Context, rec *storage.Record) error {
	enc, err := storage.EncodeRecord(rec)
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	_, err = c.client.Create(ctx, wrapperspb.Bytes(enc))
	return mapRPC(err)
}

func (c *Client) Get(ctx context.Context, id string) (*storage.Record, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Get(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, mapRPC(err)
	}
	return storage.DecodeRecord(reply.GetValue())
}

func (c *Client) MarkConsumed(ctx context.Context, id string, at time.Time) error {
	enc, err := wireEncMode.Marshal(consumeRequest{ID: id, At: at.UTC()})
	if err != nil {
		return err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	_, err = c.client.MarkConsumed(ctx, wrapperspb.Bytes(enc))
	return mapRPC(err)
}

func (c *Client) List(ctx context.Context, unconsumedOnly bool) ([]*storage.Record, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.List(ctx, wrapperspb.Bool(unconsumedOnly))
	if err != nil {
		return nil, mapRPC(err)
	}
	return storage.DecodeRecordList(reply.GetValue())
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

var _ storage.Repository = (*Client)(nil)
