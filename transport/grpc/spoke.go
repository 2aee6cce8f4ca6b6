package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/crillab/panoramyx/codec"
)

// startSpoke dials the hub, opens the single long-lived Exchange stream,
// sends the registration envelope, and starts the goroutine that demuxes
// incoming envelopes into this rank's inbox.
func (t *Transport) startSpoke(ctx context.Context) error {
	conn, err := grpc.Dial(t.hubAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return fmt.Errorf("transport/grpc: dial hub %s: %w", t.hubAddr, err)
	}
	t.conn = conn

	stream, err := conn.NewStream(ctx, exchangeStreamDesc(), fullMethodName())
	if err != nil {
		return fmt.Errorf("transport/grpc: open exchange stream: %w", err)
	}
	t.stream = stream

	reg := &envelope{dest: 0, frame: codec.Frame{Tag: registerTag, Src: int32(t.id)}}
	if err := stream.SendMsg(reg); err != nil {
		return fmt.Errorf("transport/grpc: registration send: %w", err)
	}

	go t.pumpSpokeStream()
	return nil
}

// pumpSpokeStream reads every envelope the hub relays to this rank and
// pushes its frame into the local inbox, until the stream errors out.
func (t *Transport) pumpSpokeStream() {
	for {
		e := &envelope{}
		if err := t.stream.RecvMsg(e); err != nil {
			return
		}
		f := e.frame
		t.inbox.push(&f)
	}
}
