package grpc

import (
	"encoding/binary"
	"fmt"

	"github.com/crillab/panoramyx/codec"
	"google.golang.org/grpc/encoding"
)

// envelope is the wire message exchanged on the Exchange stream: a frame
// plus the rank it is ultimately addressed to, so the hub (rank 0) knows
// whether to keep it or relay it onward.
type envelope struct {
	dest  int32
	frame codec.Frame
}

func (e envelope) marshal() []byte {
	b := codec.NewBuilder(e.frame.Tag).
		AppendInt(e.dest).
		AppendInt(e.frame.Src).
		AppendRaw(e.frame.Payload)
	return b.Build(e.frame.Src).Payload
}

// codecName is registered with grpc's encoding package so Exchange can
// carry raw envelopes instead of protobuf messages: no .proto file is
// compiled for this transport, matching spec.md's instruction to keep the
// grpc variant simplified rather than fabricate a generated stub.
const codecName = "panoramyx-envelope"

func init() {
	encoding.RegisterCodec(envelopeCodec{})
}

// envelopeCodec implements encoding/codec's Codec interface over *envelope
// values using the same length-prefixed frame format as the rest of the
// system's wire traffic (codec.Builder/Reader), instead of protobuf.
type envelopeCodec struct{}

func (envelopeCodec) Name() string { return codecName }

func (envelopeCodec) Marshal(v interface{}) ([]byte, error) {
	e, ok := v.(*envelope)
	if !ok {
		return nil, fmt.Errorf("transport/grpc: codec cannot marshal %T", v)
	}
	tagBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(tagBuf, uint16(e.frame.Tag))
	out := append(tagBuf, e.marshal()...)
	return out, nil
}

func (envelopeCodec) Unmarshal(data []byte, v interface{}) error {
	e, ok := v.(*envelope)
	if !ok {
		return fmt.Errorf("transport/grpc: codec cannot unmarshal into %T", v)
	}
	if len(data) < 2 {
		return fmt.Errorf("transport/grpc: truncated envelope")
	}
	tag := int16(binary.BigEndian.Uint16(data[:2]))
	r := codec.NewReader(data[2:])
	dest := r.Int()
	src := r.Int()
	payload := r.Remaining()
	e.dest = dest
	e.frame = codec.Frame{Tag: tag, Src: src, Payload: payload}
	return nil
}
