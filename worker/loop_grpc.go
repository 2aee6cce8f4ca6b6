package worker

import (
	"context"

	"github.com/crillab/panoramyx/transport"
)

// runWildcard is used by any transport variant that natively supports
// transport.AnyTag/transport.AnySource (currently transport/grpc): a single
// blocking receive suffices, since the matchQueue behind it already scans
// for any tag from any source.
func (l *Loop) runWildcard(ctx context.Context) error {
	for {
		frame, err := l.Transport.Receive(ctx, transport.AnyTag, transport.AnySource)
		if err != nil {
			return err
		}
		if l.dispatch(ctx, frame) {
			return nil
		}
	}
}
