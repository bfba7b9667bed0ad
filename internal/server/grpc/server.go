package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/visitorhub/internal/logging"
	pb "github.com/dmitrijs2005/visitorhub/internal/proto"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// AccountManager is the part of services.AccountService served over gRPC.
type AccountManager interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Authenticate(ctx context.Context, usernameOrEmail, plain string) (*services.AuthResult, error)
	Authorize(ctx context.Context, token string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error)
	ListAccounts(ctx context.Context, skip, limit int, status string) (*models.Page, error)
	AvatarUpload(ctx context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error)
}

type GRPCServer struct {
	pb.UnimplementedVisitorServiceServer
	address  string
	accounts AccountManager
	logger   logging.Logger
	metrics  *rpcMetrics

	publicList bool
}

type Option func(*GRPCServer)

// WithPublicVisitorList lets ListVisitors run without a bearer token.
func WithPublicVisitorList() Option {
	return func(s *GRPCServer) { s.publicList = true }
}

// NewGRPCServer serves accounts on address a. Call metrics are registered
// with reg; a nil reg leaves them unregistered.
func NewGRPCServer(a string, l logging.Logger, am AccountManager, reg prometheus.Registerer, opts ...Option) *GRPCServer {
	if l == nil {
		l = logging.Nop{}
	}
	s := &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: am,
		metrics:  newRPCMetrics(reg),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	pb.RegisterVisitorServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
