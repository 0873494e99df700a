package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// NodeServiceServer is implemented by internal/node.Node. Every method
// corresponds to one operation of spec §4.4.
type NodeServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingReply, error)
	NodeJoin(context.Context, *JoinRequest) (*NodeInfoMessage, error)
	Stabilize(context.Context, *NodeInfoMessage) (*NodeInfoMessage, error)
	SearchFinger(context.Context, *FingerQuestion) (*NodeInfoMessage, error)
	InsertMailbox(context.Context, *InsertMailboxMessage) (*NodeInfoMessage, error)
	LookupMailbox(context.Context, *QueryMailbox) (*NodeInfoMessage, error)
	Authenticate(context.Context, *Authentication) (*StatusReply, error)
	Send(context.Context, *MailboxMessage) (*StatusReply, error)
	Delete(context.Context, *DeleteMessage) (*StatusReply, error)
	Receive(context.Context, *Authentication) (*Mailbox, error)
	Transfer(context.Context, *TransferMailbox) (*StatusReply, error)
}

// NodeServiceClient is the client-side stub matching NodeServiceServer,
// used both by forwarded node-to-node calls and by the top-level client
// package.
type NodeServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingReply, error)
	NodeJoin(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*NodeInfoMessage, error)
	Stabilize(ctx context.Context, in *NodeInfoMessage, opts ...grpc.CallOption) (*NodeInfoMessage, error)
	SearchFinger(ctx context.Context, in *FingerQuestion, opts ...grpc.CallOption) (*NodeInfoMessage, error)
	InsertMailbox(ctx context.Context, in *InsertMailboxMessage, opts ...grpc.CallOption) (*NodeInfoMessage, error)
	LookupMailbox(ctx context.Context, in *QueryMailbox, opts ...grpc.CallOption) (*NodeInfoMessage, error)
	Authenticate(ctx context.Context, in *Authentication, opts ...grpc.CallOption) (*StatusReply, error)
	Send(ctx context.Context, in *MailboxMessage, opts ...grpc.CallOption) (*StatusReply, error)
	Delete(ctx context.Context, in *DeleteMessage, opts ...grpc.CallOption) (*StatusReply, error)
	Receive(ctx context.Context, in *Authentication, opts ...grpc.CallOption) (*Mailbox, error)
	Transfer(ctx context.Context, in *TransferMailbox, opts ...grpc.CallOption) (*StatusReply, error)
}

type nodeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNodeServiceClient wraps an established connection with typed stub
// methods, the way protoc-gen-go-grpc's generated constructor would.
func NewNodeServiceClient(cc grpc.ClientConnInterface) NodeServiceClient {
	return &nodeServiceClient{cc: cc}
}

func (c *nodeServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingReply, error) {
	out := new(PingReply)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) NodeJoin(ctx context.Context, in *JoinRequest, opts ...grpc.CallOption) (*NodeInfoMessage, error) {
	out := new(NodeInfoMessage)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/NodeJoin", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Stabilize(ctx context.Context, in *NodeInfoMessage, opts ...grpc.CallOption) (*NodeInfoMessage, error) {
	out := new(NodeInfoMessage)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Stabilize", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) SearchFinger(ctx context.Context, in *FingerQuestion, opts ...grpc.CallOption) (*NodeInfoMessage, error) {
	out := new(NodeInfoMessage)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/SearchFinger", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) InsertMailbox(ctx context.Context, in *InsertMailboxMessage, opts ...grpc.CallOption) (*NodeInfoMessage, error) {
	out := new(NodeInfoMessage)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/InsertMailbox", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) LookupMailbox(ctx context.Context, in *QueryMailbox, opts ...grpc.CallOption) (*NodeInfoMessage, error) {
	out := new(NodeInfoMessage)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/LookupMailbox", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Authenticate(ctx context.Context, in *Authentication, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Authenticate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Send(ctx context.Context, in *MailboxMessage, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Send", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Delete(ctx context.Context, in *DeleteMessage, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Receive(ctx context.Context, in *Authentication, opts ...grpc.CallOption) (*Mailbox, error) {
	out := new(Mailbox)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Receive", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeServiceClient) Transfer(ctx context.Context, in *TransferMailbox, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, "/chord.NodeService/Transfer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func pingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func nodeJoinHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(JoinRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).NodeJoin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/NodeJoin"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).NodeJoin(ctx, req.(*JoinRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func stabilizeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NodeInfoMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Stabilize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Stabilize"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Stabilize(ctx, req.(*NodeInfoMessage))
	}
	return interceptor(ctx, in, info, handler)
}

func searchFingerHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FingerQuestion)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).SearchFinger(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/SearchFinger"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).SearchFinger(ctx, req.(*FingerQuestion))
	}
	return interceptor(ctx, in, info, handler)
}

func insertMailboxHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InsertMailboxMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).InsertMailbox(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/InsertMailbox"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).InsertMailbox(ctx, req.(*InsertMailboxMessage))
	}
	return interceptor(ctx, in, info, handler)
}

func lookupMailboxHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryMailbox)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).LookupMailbox(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/LookupMailbox"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).LookupMailbox(ctx, req.(*QueryMailbox))
	}
	return interceptor(ctx, in, info, handler)
}

func authenticateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Authentication)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Authenticate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Authenticate(ctx, req.(*Authentication))
	}
	return interceptor(ctx, in, info, handler)
}

func sendHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MailboxMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Send"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Send(ctx, req.(*MailboxMessage))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DeleteMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Delete"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Delete(ctx, req.(*DeleteMessage))
	}
	return interceptor(ctx, in, info, handler)
}

func receiveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Authentication)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Receive(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Receive"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Receive(ctx, req.(*Authentication))
	}
	return interceptor(ctx, in, info, handler)
}

func transferHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TransferMailbox)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/chord.NodeService/Transfer"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NodeServiceServer).Transfer(ctx, req.(*TransferMailbox))
	}
	return interceptor(ctx, in, info, handler)
}

// NodeServiceDesc is the hand-written equivalent of what
// protoc-gen-go-grpc would emit from a chord.proto describing spec §6's
// NodeService. Passed to grpc.Server.RegisterService.
var NodeServiceDesc = grpc.ServiceDesc{
	ServiceName: "chord.NodeService",
	HandlerType: (*NodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "NodeJoin", Handler: nodeJoinHandler},
		{MethodName: "Stabilize", Handler: stabilizeHandler},
		{MethodName: "SearchFinger", Handler: searchFingerHandler},
		{MethodName: "InsertMailbox", Handler: insertMailboxHandler},
		{MethodName: "LookupMailbox", Handler: lookupMailboxHandler},
		{MethodName: "Authenticate", Handler: authenticateHandler},
		{MethodName: "Send", Handler: sendHandler},
		{MethodName: "Delete", Handler: deleteHandler},
		{MethodName: "Receive", Handler: receiveHandler},
		{MethodName: "Transfer", Handler: transferHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chord.proto",
}
