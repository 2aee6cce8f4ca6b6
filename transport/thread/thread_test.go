package thread_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/transport/thread"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	ts := thread.Group(2)
	ctx := context.Background()

	frame := codec.NewBuilder(codec.TagSolve).AppendInt(42).Build(int32(ts[0].ID()))
	require.NoError(t, ts[0].Send(ctx, &frame, 1))

	got, err := ts[1].Receive(ctx, codec.TagSolve, int32(ts[0].ID()))
	require.NoError(t, err)
	assert.Equal(t, int32(42), codec.NewReader(got.Payload).Int())
}

func TestFIFOPerTagSrcDest(t *testing.T) {
	ts := thread.Group(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f := codec.NewBuilder(codec.TagSolve).AppendInt(int32(i)).Build(int32(ts[0].ID()))
		require.NoError(t, ts[0].Send(ctx, &f, 1))
	}
	for i := 0; i < 5; i++ {
		got, err := ts[1].Receive(ctx, codec.TagSolve, int32(ts[0].ID()))
		require.NoError(t, err)
		assert.Equal(t, int32(i), codec.NewReader(got.Payload).Int())
	}
}

func TestReceiveRejectsWildcards(t *testing.T) {
	ts := thread.Group(2)
	ctx := context.Background()

	_, err := ts[1].Receive(ctx, transport.AnyTag, int32(ts[0].ID()))
	assert.ErrorIs(t, err, transport.ErrWildcardUnsupported)

	_, err = ts[1].Receive(ctx, codec.TagSolve, transport.AnySource)
	assert.ErrorIs(t, err, transport.ErrWildcardUnsupported)
}

func TestReceiveCanceledByContext(t *testing.T) {
	ts := thread.Group(2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ts[1].Receive(ctx, codec.TagSolve, int32(ts[0].ID()))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFinalizeWakesBlockedReceive(t *testing.T) {
	ts := thread.Group(2)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := ts[1].Receive(ctx, codec.TagSolve, int32(ts[0].ID()))
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ts[0].Finalize())

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock after Finalize")
	}
}
