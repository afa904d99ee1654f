// Package tcpconn provides a pool factory for raw TCP connections with
// optional heartbeat validation.
package tcpconn

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sjy-dv/scpool/scpool/core"
)

var ErrInvalidAddr = errors.New("tcpconn: invalid addr")

type Options struct {
	// Addr is the host:port to dial. Required.
	Addr string
	// DialTimeout bounds Create. Zero relies on the acquire context.
	DialTimeout time.Duration
	// HeartData, when set, is written during Validate and one response
	// byte is expected back. Empty skips active validation.
	HeartData []byte
}

type factory struct {
	opts Options
}

var _ core.Factory[net.Conn] = &factory{}

// New returns a factory dialing opts.Addr.
func New(opts Options) (core.Factory[net.Conn], error) {
	if opts.Addr == "" {
		return nil, ErrInvalidAddr
	}
	return &factory{opts: opts}, nil
}

func (f *factory) Create(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: f.opts.DialTimeout}
	return d.DialContext(ctx, "tcp", f.opts.Addr)
}

func (f *factory) Destroy(conn net.Conn) error {
	return conn.Close()
}

func (f *factory) Validate(ctx context.Context, conn net.Conn) bool {
	if len(f.opts.HeartData) == 0 {
		return true
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}
	if _, err := conn.Write(f.opts.HeartData); err != nil {
		return false
	}
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	return err == nil
}
