package coordinator_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/crillab/panoramyx/bounds"
	"github.com/crillab/panoramyx/coordinator"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe"
)

// TestPortfolioSolverBoundDirection is the behavioral spec for the
// minimization/maximization branch in PortfolioSolver.onNewBound: a
// minimization run narrows the window's max side as workers report better
// (smaller) bounds, a maximization run narrows the min side instead.
func TestPortfolioSolverBoundDirection(t *testing.T) {
	Convey("Given a portfolio solver sharing a bound window across two workers", t, func() {
		Convey("When the run is minimizing", func() {
			transports := thread.Group(3)
			strategy := bounds.NewRangeBasedStrategy(linearFactory)
			strategy.SetMinimization(true)
			p := coordinator.NewPortfolioSolver(transports[0], []int{1, 2}, strategy, big.NewInt(0), big.NewInt(100))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			w1 := &fakeWorker{t: t, tr: transports[1]}
			w2 := &fakeWorker{t: t, tr: transports[2]}

			done := make(chan struct{})
			go func() {
				defer close(done)
				w1.awaitDispatch(ctx)
				w2.awaitDispatch(ctx)
				w1.sendBound(ctx, big.NewInt(40))
				bound := w2.awaitBoundUpdate(ctx)
				So(bound.Cmp(big.NewInt(40)) <= 0, ShouldBeTrue)
				w1.sendResult(ctx, universe.Optimum)
				w2.sendResult(ctx, universe.Unsatisfiable)
				w1.awaitEnd(ctx)
				w2.awaitEnd(ctx)
			}()

			result, err := p.StartSearch(ctx)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, universe.Optimum)
			<-done
		})

		Convey("When the run is maximizing", func() {
			transports := thread.Group(3)
			strategy := bounds.NewRangeBasedStrategy(linearFactory)
			strategy.SetMinimization(false)
			p := coordinator.NewPortfolioSolver(transports[0], []int{1, 2}, strategy, big.NewInt(0), big.NewInt(100))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			w1 := &fakeWorker{t: t, tr: transports[1]}
			w2 := &fakeWorker{t: t, tr: transports[2]}

			done := make(chan struct{})
			go func() {
				defer close(done)
				w1.awaitDispatch(ctx)
				w2.awaitDispatch(ctx)
				w1.sendBound(ctx, big.NewInt(60))
				bound := w2.awaitBoundUpdate(ctx)
				So(bound.Cmp(big.NewInt(60)) >= 0, ShouldBeTrue)
				w1.sendResult(ctx, universe.Optimum)
				w2.sendResult(ctx, universe.Unsatisfiable)
				w1.awaitEnd(ctx)
				w2.awaitEnd(ctx)
			}()

			result, err := p.StartSearch(ctx)
			So(err, ShouldBeNil)
			So(result, ShouldEqual, universe.Optimum)
			<-done
		})
	})
}
