// Package proto defines the anonid.v1.Registry gRPC service. Requests and
// responses travel as google.protobuf.Struct values; messages.go maps them
// to typed Go messages.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "anonid.v1.Registry"

const (
	Registry_Ping_FullMethodName      = "/anonid.v1.Registry/Ping"
	Registry_Challenge_FullMethodName = "/anonid.v1.Registry/Challenge"
	Registry_Register_FullMethodName  = "/anonid.v1.Registry/Register"
	Registry_Verify_FullMethodName    = "/anonid.v1.Registry/Verify"
	Registry_Lookup_FullMethodName    = "/anonid.v1.Registry/Lookup"
	Registry_Whoami_FullMethodName    = "/anonid.v1.Registry/Whoami"
)

// RegistryClient is the client API for the Registry service.
type RegistryClient interface {
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Challenge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Lookup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Whoami(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type registryClient struct {
	cc grpc.ClientConnInterface
}

func NewRegistryClient(cc grpc.ClientConnInterface) RegistryClient {
	return &registryClient{cc}
}

func (c *registryClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *registryClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Ping_FullMethodName, in, opts)
}

func (c *registryClient) Challenge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Challenge_FullMethodName, in, opts)
}

func (c *registryClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Register_FullMethodName, in, opts)
}

func (c *registryClient) Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Verify_FullMethodName, in, opts)
}

func (c *registryClient) Lookup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Lookup_FullMethodName, in, opts)
}

func (c *registryClient) Whoami(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Registry_Whoami_FullMethodName, in, opts)
}

// RegistryServer is the server API for the Registry service.
// Implementations must embed UnimplementedRegistryServer.
type RegistryServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Challenge(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Verify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Lookup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Whoami(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedRegistryServer()
}

// UnimplementedRegistryServer answers every method with codes.Unimplemented.
type UnimplementedRegistryServer struct{}

func (UnimplementedRegistryServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedRegistryServer) Challenge(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Challenge not implemented")
}
func (UnimplementedRegistryServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedRegistryServer) Verify(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Verify not implemented")
}
func (UnimplementedRegistryServer) Lookup(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Lookup not implemented")
}
func (UnimplementedRegistryServer) Whoami(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Whoami not implemented")
}
func (UnimplementedRegistryServer) mustEmbedUnimplementedRegistryServer() {}

func RegisterRegistryServer(s grpc.ServiceRegistrar, srv RegistryServer) {
	s.RegisterService(&Registry_ServiceDesc, srv)
}

type unaryMethod func(RegistryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RegistryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RegistryServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Registry_ServiceDesc is the grpc.ServiceDesc for the Registry service.
var Registry_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(Registry_Ping_FullMethodName, RegistryServer.Ping)},
		{MethodName: "Challenge", Handler: unaryHandler(Registry_Challenge_FullMethodName, RegistryServer.Challenge)},
		{MethodName: "Register", Handler: unaryHandler(Registry_Register_FullMethodName, RegistryServer.Register)},
		{MethodName: "Verify", Handler: unaryHandler(Registry_Verify_FullMethodName, RegistryServer.Verify)},
		{MethodName: "Lookup", Handler: unaryHandler(Registry_Lookup_FullMethodName, RegistryServer.Lookup)},
		{MethodName: "Whoami", Handler: unaryHandler(Registry_Whoami_FullMethodName, RegistryServer.Whoami)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "anonid/v1/registry.proto",
}
