// Package grpcconn provides a pool factory for gRPC client channels.
package grpcconn

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sjy-dv/scpool/scpool/core"
)

var ErrInvalidAddr = errors.New("grpcconn: invalid addr")

type Options struct {
	// Addr format host:port, example 127.0.0.1:50051. Required.
	Addr string
	// DialOptions override the default insecure transport credentials.
	DialOptions []grpc.DialOption
}

type factory struct {
	opts Options
}

var _ core.Factory[*grpc.ClientConn] = &factory{}

// New returns a factory dialing opts.Addr.
func New(opts Options) (core.Factory[*grpc.ClientConn], error) {
	if opts.Addr == "" {
		return nil, ErrInvalidAddr
	}
	if len(opts.DialOptions) == 0 {
		opts.DialOptions = []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}
	}
	return &factory{opts: opts}, nil
}

func (f *factory) Create(ctx context.Context) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, f.opts.Addr, f.opts.DialOptions...)
}

func (f *factory) Destroy(cc *grpc.ClientConn) error {
	return cc.Close()
}

// Validate trusts the channel's own connectivity tracking; gRPC
// reconnects Idle and Connecting channels on the next RPC, so only a
// terminal state marks the resource invalid.
func (f *factory) Validate(_ context.Context, cc *grpc.ClientConn) bool {
	switch cc.GetState() {
	case connectivity.Shutdown, connectivity.TransientFailure:
		return false
	default:
		return true
	}
}
