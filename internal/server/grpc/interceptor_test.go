package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/logging"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/dmitrijs2005/anonid/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer(secret string) *GRPCServer {
	return NewGRPCServer("", logging.Nop{}, &fakeRegistry{}, secret)
}

func receiptFor(t *testing.T, secret string, validity time.Duration) string {
	t.Helper()
	r, err := auth.IssueReceipt(auth.Receipt{RegistrationID: "id", Username: "alice"}, []byte(secret), validity)
	require.NoError(t, err)
	return r
}

func TestInterceptor_OtherMethodsPassWithoutReceipt(t *testing.T) {
	s := newTestServer("secret")
	called := false

	resp, err := s.receiptInterceptor(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: pb.Registry_Register_FullMethodName},
		func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_Whoami(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: pb.Registry_Whoami_FullMethodName}

	tests := []struct {
		name     string
		md       metadata.MD
		wantCode codes.Code
	}{
		{"missing metadata", nil, codes.Unauthenticated},
		{"empty receipt", metadata.Pairs(common.ReceiptHeaderName, ""), codes.Unauthenticated},
		{"garbage receipt", metadata.Pairs(common.ReceiptHeaderName, "abc"), codes.Unauthenticated},
		{"wrong secret", metadata.Pairs(common.ReceiptHeaderName, receiptFor(t, "other", time.Hour)), codes.Unauthenticated},
		{"expired", metadata.Pairs(common.ReceiptHeaderName, receiptFor(t, "secret", -time.Second)), codes.Unauthenticated},
		{"valid", metadata.Pairs(common.ReceiptHeaderName, receiptFor(t, "secret", time.Hour)), codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer("secret")
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			var got string
			_, err := s.receiptInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
				got, _ = receiptFromContext(ctx)
				return nil, nil
			})

			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, tt.md.Get(common.ReceiptHeaderName)[0], got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer("secret")
	want := status.Error(codes.NotFound, "nope")

	_, err := s.loggingInterceptor(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: pb.Registry_Lookup_FullMethodName},
		func(ctx context.Context, req any) (any, error) { return nil, want })
	assert.Equal(t, want, err)
}
