package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/anonid/internal/common"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/dmitrijs2005/anonid/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const receiptKey ctxKey = "receipt"

// methods that require a receipt in metadata
var receiptMethods = map[string]bool{
	pb.Registry_Whoami_FullMethodName: true,
}

func receiptFromContext(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(receiptKey).(string)
	return r, ok && r != ""
}

func (s *GRPCServer) receiptInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !receiptMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var receipt string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.ReceiptHeaderName); len(values) > 0 {
			receipt = values[0]
		}
	}
	if receipt == "" {
		return nil, status.Error(codes.Unauthenticated, "missing receipt")
	}

	if _, err := auth.ParseReceipt(receipt, s.jwtSecret); err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "receipt expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid receipt")
	}

	return handler(context.WithValue(ctx, receiptKey, receipt), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "request handled",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}
