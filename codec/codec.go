// Package codec implements the wire format used by every transport
// variant: a fixed-size frame header (tag, source, payload size) followed
// by a typed, length-prefixed payload. Builder appends typed values in
// order; Reader reads them back in the same order. Neither type validates
// that the caller reads back what was written in the same order it was
// written -- that discipline lives with the message tag constants below.
package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/crillab/panoramyx/assumption"
)

// Reserved tags used by the coordinator/worker protocol. Application-level
// tags (e.g. constraint-specific RPCs) should start above TagUserBase.
const (
	TagSolve           int16 = 1
	TagResponse        int16 = 2
	TagInterrupt       int16 = 3
	TagBoundUpdate     int16 = 4
	TagResult          int16 = 5
	TagEnd             int16 = 6
	TagConstraintScore int16 = 7

	TagUserBase int16 = 1000
)

// Opcodes carried as the first int of a TagSolve payload, distinguishing
// the coordinator/worker protocol's two TagSolve-tagged requests.
const (
	OpLoadInstance int32 = iota
	OpSolveCube
)

// Frame is the envelope carried by a Transport: a tag identifying the kind
// of message, the rank of the sender, and an opaque encoded payload.
type Frame struct {
	Tag     int16
	Src     int32
	Payload []byte
}

// Size returns the number of bytes the payload occupies, mirroring the
// size field present in the original wire messages.
func (f Frame) Size() uint32 { return uint32(len(f.Payload)) }

// Builder appends typed values to a payload buffer in the order they will
// be read back by a Reader. It never returns an error: all append
// operations are infallible given well-formed Go values.
type Builder struct {
	tag int16
	buf []byte
}

// NewBuilder starts building a frame payload tagged with tag.
func NewBuilder(tag int16) *Builder {
	return &Builder{tag: tag}
}

// AppendInt appends a 4-byte signed integer.
func (b *Builder) AppendInt(v int32) *Builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// AppendLong appends an 8-byte signed integer.
func (b *Builder) AppendLong(v int64) *Builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// AppendBool appends a single-byte boolean.
func (b *Builder) AppendBool(v bool) *Builder {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
	return b
}

// AppendString appends a length-prefixed UTF-8 string.
func (b *Builder) AppendString(s string) *Builder {
	b.AppendInt(int32(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

// nilBigIntMarker is stored in place of a sign value (-1, 0 or 1) to mark a
// nil *big.Int, since -1 is itself a valid sign.
const nilBigIntMarker int32 = -2

// AppendBigInt appends a length-prefixed big integer, storing its sign and
// magnitude separately so zero, negative and nil values all round-trip.
func (b *Builder) AppendBigInt(v *big.Int) *Builder {
	if v == nil {
		b.AppendInt(nilBigIntMarker)
		return b
	}
	mag := v.Bytes()
	b.AppendInt(int32(v.Sign()))
	b.AppendInt(int32(len(mag)))
	b.buf = append(b.buf, mag...)
	return b
}

// AppendSlice appends a length-prefixed slice of values, each encoded by enc.
func AppendSlice[T any](b *Builder, values []T, enc func(*Builder, T)) *Builder {
	b.AppendInt(int32(len(values)))
	for _, v := range values {
		enc(b, v)
	}
	return b
}

// AppendRaw appends an already-encoded nested payload without a length
// prefix. Callers needing to delimit it should AppendInt the length first.
func (b *Builder) AppendRaw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Build finalizes the frame, attaching the sender rank. src is supplied by
// the Transport at send time in most call sites; callers that need to
// stamp it themselves (tests, loopback transports) may pass it directly.
func (b *Builder) Build(src int32) Frame {
	return Frame{Tag: b.tag, Src: src, Payload: b.buf}
}

// Bytes returns the payload assembled so far, without wrapping it in a Frame.
func (b *Builder) Bytes() []byte { return b.buf }

// Reader consumes a payload in the same order a Builder wrote it. Reads
// past the end of the payload panic with an *ErrShortPayload value, since a malformed frame indicates a protocol bug rather than a
// recoverable runtime condition.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps payload for sequential typed reads.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

// ErrShortPayload is the value a Reader panics with when it runs out of
// bytes before satisfying a read.
type ErrShortPayload struct {
	Wanted, Have int
}

func (e *ErrShortPayload) Error() string {
	return fmt.Sprintf("codec: short payload: wanted %d bytes, have %d", e.Wanted, e.Have)
}

func (r *Reader) take(n int) []byte {
	if r.pos+n > len(r.buf) {
		panic(&ErrShortPayload{Wanted: n, Have: len(r.buf) - r.pos})
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out
}

// Int reads a 4-byte signed integer.
func (r *Reader) Int() int32 {
	return int32(binary.BigEndian.Uint32(r.take(4)))
}

// Long reads an 8-byte signed integer.
func (r *Reader) Long() int64 {
	return int64(binary.BigEndian.Uint64(r.take(8)))
}

// Bool reads a single-byte boolean.
func (r *Reader) Bool() bool {
	return r.take(1)[0] != 0
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() string {
	n := int(r.Int())
	return string(r.take(n))
}

// BigInt reads a big integer written by AppendBigInt, returning nil if the
// encoded value was nil.
func (r *Reader) BigInt() *big.Int {
	sign := r.Int()
	if sign == nilBigIntMarker {
		return nil
	}
	n := int(r.Int())
	mag := r.take(n)
	v := new(big.Int).SetBytes(mag)
	if sign < 0 {
		v.Neg(v)
	}
	return v
}

// Slice reads back a length-prefixed slice written by AppendSlice.
func Slice[T any](r *Reader, dec func(*Reader) T) []T {
	n := int(r.Int())
	out := make([]T, n)
	for i := range out {
		out[i] = dec(r)
	}
	return out
}

// AppendAssumption appends a single assumption: variable, polarity, value
// and an optional range upper bound.
func (b *Builder) AppendAssumption(a assumption.Assumption) *Builder {
	b.AppendString(a.Variable)
	b.AppendBool(a.Equal)
	b.AppendBigInt(a.Value)
	b.AppendBigInt(a.Max)
	return b
}

// AppendCube appends a length-prefixed cube (slice of assumptions).
func (b *Builder) AppendCube(c assumption.Cube) *Builder {
	return AppendSlice(b, []assumption.Assumption(c), func(bb *Builder, a assumption.Assumption) {
		bb.AppendAssumption(a)
	})
}

// Assumption reads a single assumption written by AppendAssumption.
func (r *Reader) Assumption() assumption.Assumption {
	return assumption.Assumption{
		Variable: r.String(),
		Equal:    r.Bool(),
		Value:    r.BigInt(),
		Max:      r.BigInt(),
	}
}

// Cube reads a cube written by AppendCube.
func (r *Reader) Cube() assumption.Cube {
	return assumption.Cube(Slice(r, func(rr *Reader) assumption.Assumption { return rr.Assumption() }))
}

// Remaining returns the unread tail of the payload.
func (r *Reader) Remaining() []byte { return r.buf[r.pos:] }

// Done reports whether every byte of the payload has been consumed.
func (r *Reader) Done() bool { return r.pos == len(r.buf) }
