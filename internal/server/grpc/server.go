// Package grpc exposes the registration service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/anonid/internal/logging"
	pb "github.com/dmitrijs2005/anonid/internal/proto"
	"github.com/dmitrijs2005/anonid/internal/server/models"
	"github.com/dmitrijs2005/anonid/internal/server/services"
	"google.golang.org/grpc"
)

// Registry is the business API served by GRPCServer. It is satisfied by
// *services.RegistrationService.
type Registry interface {
	Challenge(username string) (*services.Challenge, error)
	Register(ctx context.Context, username, authAddress, digest string, nonce uint64) (*services.Registered, error)
	Verify(ctx context.Context, merged, digest string, nonce uint64) (*services.Verification, error)
	Lookup(ctx context.Context, username string) (*models.Registration, error)
	LookupByAuthAddress(ctx context.Context, authAddress string) ([]*models.Registration, error)
	Whoami(ctx context.Context, receipt string) (*models.Registration, error)
}

type GRPCServer struct {
	pb.UnimplementedRegistryServer
	address   string
	registry  Registry
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, r Registry, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		registry:  r,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.receiptInterceptor))
	pb.RegisterRegistryServer(srv, s)
	return srv
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	err := srv.Serve(listen)
	close(done)
	<-stopped
	return err
}
