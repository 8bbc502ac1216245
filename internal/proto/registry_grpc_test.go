package proto

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type pingOnly struct {
	UnimplementedRegistryServer
}

func (p *pingOnly) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return Encode(PingResponse{Status: "OK"})
}

func dial(t *testing.T, srv RegistryServer, opts ...grpc.ServerOption) RegistryClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterRegistryServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewRegistryClient(conn)
}

func TestRegistry_PingRoundTrip(t *testing.T) {
	c := dial(t, &pingOnly{})

	out, err := c.Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)

	var resp PingResponse
	require.NoError(t, Decode(out, &resp))
	assert.Equal(t, "OK", resp.Status)
}

func TestRegistry_UnimplementedMethods(t *testing.T) {
	c := dial(t, &pingOnly{})

	_, err := c.Whoami(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRegistry_InterceptorSeesFullMethod(t *testing.T) {
	var method string
	c := dial(t, &pingOnly{}, grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method = info.FullMethod
		return handler(ctx, req)
	}))

	_, err := c.Ping(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, Registry_Ping_FullMethodName, method)
}
