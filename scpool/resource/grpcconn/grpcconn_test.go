package grpcconn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAddr(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrInvalidAddr)
}

func TestFactoryLifecycle(t *testing.T) {
	// dialing is lazy, no server needs to be running
	f, err := New(Options{Addr: "127.0.0.1:50051"})
	require.NoError(t, err)

	cc, err := f.Create(context.Background())
	require.NoError(t, err)

	assert.True(t, f.Validate(context.Background(), cc), "idle channel is healthy")
	require.NoError(t, f.Destroy(cc))
	assert.False(t, f.Validate(context.Background(), cc), "shutdown channel is not")
}
