package worker

import (
	"context"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/crillab/panoramyx/codec"
)

// threadTags lists every tag the coordinator protocol can address to a
// worker. The thread transport cannot honor transport.AnyTag any more than
// it can transport.AnySource, so runThread opens one receive goroutine per
// tag (each bound to the known CoordinatorRank) and fans them into a single
// channel with channerics.Merge, mirroring the coordinator's own
// per-worker watchWorker fan-in.
var threadTags = []int16{
	codec.TagSolve,
	codec.TagInterrupt,
	codec.TagBoundUpdate,
	codec.TagConstraintScore,
	codec.TagEnd,
}

func (l *Loop) runThread(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chans := make([]<-chan *codec.Frame, 0, len(threadTags))
	for _, tag := range threadTags {
		chans = append(chans, l.pollTag(ctx, tag))
	}
	frames := channerics.Merge(ctx.Done(), chans...)

	for frame := range frames {
		if l.dispatch(ctx, frame) {
			return nil
		}
	}
	return ctx.Err()
}

// pollTag spins a goroutine that repeatedly blocks on (tag, CoordinatorRank)
// and forwards every frame it receives, until ctx is canceled or the
// transport reports an error (e.g. Finalize was called).
func (l *Loop) pollTag(ctx context.Context, tag int16) <-chan *codec.Frame {
	out := make(chan *codec.Frame)
	go func() {
		defer close(out)
		for {
			frame, err := l.Transport.Receive(ctx, tag, int32(l.CoordinatorRank))
			if err != nil {
				return
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
