// Package dashboard publishes a live view of a coordinator run over a
// websocket connection, grounded on server.Server / server/root_view.RootView
// / server/fastview.ViewBuilder: one process, one stream, views fed by a
// single broadcast source, intentionally modest about concurrent clients the
// same way the teacher's server is.
package dashboard

import (
	"context"
	"math/big"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/universe"
)

// EventKind names what happened during a run.
type EventKind string

const (
	EventCubeDispatched EventKind = "cube_dispatched"
	EventCubeResult     EventKind = "cube_result"
	EventBoundUpdate    EventKind = "bound_update"
	EventRunFinished    EventKind = "run_finished"
)

// Event is one observable step of a coordinator run, published to a Bus by
// whichever coordinator.Solver is driving the run.
type Event struct {
	Kind   EventKind
	Rank   int
	Cube   assumption.Cube
	Bound  *big.Int
	Result universe.Result
}

// Bus fans a single stream of Events out to the dashboard's views, mirroring
// fastview.ViewBuilder.Build's single-source/many-views shape: the solver
// plays the role of the data source, and CubeEvents/BoundEvents play the role of
// the per-view builder functions.
type Bus struct {
	publish chan *Event
	views   []<-chan *Event
}

// NewBus creates a Bus and immediately splits its stream into nbViews
// independent broadcast channels via channerics.Broadcast, exactly as
// ViewBuilder.Build splits one view-model channel per builder function.
// Every channel closes once ctx is done. Like channerics.Broadcast itself,
// the number of observers is fixed at construction rather than growing as
// websocket clients connect; a deployment configures nbViews for the number
// of dashboard replicas it expects to run.
func NewBus(ctx context.Context, nbViews int) *Bus {
	publish := make(chan *Event)
	return &Bus{
		publish: publish,
		views:   channerics.Broadcast(ctx.Done(), publish, nbViews),
	}
}

// Publish sends an event to every view, blocking until ctx is done or the
// event is accepted by the broadcaster.
func (b *Bus) Publish(ctx context.Context, ev *Event) {
	select {
	case b.publish <- ev:
	case <-ctx.Done():
	}
}

// View returns the i'th broadcast channel created by NewBus. Panics on an
// out-of-range index, same as slice indexing would.
func (b *Bus) View(i int) <-chan *Event {
	return b.views[i]
}

const (
	cubeView  = 0
	boundView = 1
	nbViews   = 2
)

// NewRunBus is the Bus shape cmd/panoramyx actually wires up: one view for
// cube dispatch/result traffic, one for bound-tightening traffic.
func NewRunBus(ctx context.Context) *Bus {
	return NewBus(ctx, nbViews)
}

// CubeEvents returns a view receiving every Event on the bus; a cube-table
// view reads this and ignores EventBoundUpdate, the same way a fastview
// ViewComponent receives the full broadcast ViewModel and renders only the
// parts it cares about.
func (b *Bus) CubeEvents() <-chan *Event { return b.View(cubeView) }

// BoundEvents returns a second, independent view over the same broadcast
// stream, for a bound-gauge view that ignores everything but EventBoundUpdate.
func (b *Bus) BoundEvents() <-chan *Event { return b.View(boundView) }
