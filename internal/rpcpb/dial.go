package rpcpb

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial opens a client connection to addr using the gob codec and no
// transport encryption, mirroring original_source's
// grpc::CreateChannel(..., InsecureChannelCredentials()) — spec's Non-goals
// explicitly exclude wire encryption.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec())),
	}, opts...)
	return grpc.NewClient(addr, dialOpts...)
}

// NewServer constructs a *grpc.Server forced onto the gob codec, mirroring
// original_source's ServerBuilder + InsecureServerCredentials.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	serverOpts := append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec()),
	}, opts...)
	return grpc.NewServer(serverOpts...)
}
