package grpc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	grpctransport "github.com/crillab/panoramyx/transport/grpc"
)

func startGroup(t *testing.T, size int) []*grpctransport.Transport {
	t.Helper()
	hub := grpctransport.Hub(size, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		_ = hub.Start(ctx, func(ctx context.Context, self transport.Transport) {
			<-ctx.Done()
		})
	}()

	addrCtx, addrCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer addrCancel()
	addr, err := hub.Addr(addrCtx)
	require.NoError(t, err)

	all := []*grpctransport.Transport{hub}
	for i := 1; i < size; i++ {
		spoke := grpctransport.Spoke(i, size, addr)
		go func() {
			_ = spoke.Start(ctx, func(ctx context.Context, self transport.Transport) {
				<-ctx.Done()
			})
		}()
		all = append(all, spoke)
	}

	time.Sleep(200 * time.Millisecond) // let registration handshakes settle
	t.Cleanup(func() {
		for _, tr := range all {
			_ = tr.Finalize()
		}
	})
	return all
}

func TestSpokeToHubSend(t *testing.T) {
	ts := startGroup(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f := codec.NewBuilder(codec.TagSolve).AppendInt(7).Build(int32(ts[1].ID()))
	require.NoError(t, ts[1].Send(ctx, &f, 0))

	got, err := ts[0].Receive(ctx, codec.TagSolve, int32(ts[1].ID()))
	require.NoError(t, err)
	assert.Equal(t, int32(7), codec.NewReader(got.Payload).Int())
}

func TestRelayBetweenSpokes(t *testing.T) {
	ts := startGroup(t, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	f := codec.NewBuilder(codec.TagResult).AppendInt(99).Build(int32(ts[1].ID()))
	require.NoError(t, ts[1].Send(ctx, &f, 2))

	got, err := ts[2].Receive(ctx, codec.TagResult, int32(ts[1].ID()))
	require.NoError(t, err)
	assert.Equal(t, int32(99), codec.NewReader(got.Payload).Int())
}

func TestReceiveAcceptsWildcards(t *testing.T) {
	ts := startGroup(t, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f := codec.NewBuilder(codec.TagEnd).AppendInt(1).Build(int32(ts[1].ID()))
	require.NoError(t, ts[1].Send(ctx, &f, 0))

	got, err := ts[0].Receive(ctx, transport.AnyTag, transport.AnySource)
	require.NoError(t, err)
	assert.Equal(t, codec.TagEnd, got.Tag)
}
