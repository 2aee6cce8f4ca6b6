package grpc

import (
	"fmt"

	"google.golang.org/grpc"
)

// serviceName and the single bidirectional streaming method this package
// hand-rolls a grpc.ServiceDesc for, rather than generating one from a
// .proto file: the wire payload is already fully described by codec.Frame,
// so protobuf code generation would only duplicate that description.
const (
	serviceName    = "panoramyx.Transport"
	exchangeMethod = "Exchange"
)

// exchangeHandler receives every envelope sent on one Exchange stream; the
// hub's server invokes it once per incoming spoke connection. A spoke reads
// its own client stream directly and does not go through it.
type exchangeHandler interface {
	handleExchange(stream grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*exchangeHandler)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    exchangeMethod,
			Handler:       exchangeStreamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "panoramyx/transport.proto",
}

func exchangeStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	h, ok := srv.(exchangeHandler)
	if !ok {
		return fmt.Errorf("transport/grpc: %T does not implement exchangeHandler", srv)
	}
	return h.handleExchange(stream)
}

func exchangeStreamDesc() *grpc.StreamDesc {
	return &serviceDesc.Streams[0]
}

func fullMethodName() string {
	return "/" + serviceName + "/" + exchangeMethod
}
