package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	pb "github.com/dmitrijs2005/visitorhub/internal/proto"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accountKey ctxKey = "account"

// authenticated lists the methods that need a bearer token.
var authenticated = map[string]bool{
	pb.GetMeMethod:        true,
	pb.UpdateMeMethod:     true,
	pb.ListVisitorsMethod: true,
	pb.AvatarUploadMethod: true,
}

func accountFrom(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}

// bearerFromMetadata reads "authorization: Bearer <token>" from incoming
// metadata.
func bearerFromMetadata(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return "", false
	}
	scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (s *GRPCServer) requiresToken(method string) bool {
	if method == pb.ListVisitorsMethod && s.publicList {
		return false
	}
	return authenticated[method]
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if s.requiresToken(info.FullMethod) {

		token, ok := bearerFromMetadata(ctx)
		if !ok {
			return nil, s.toStatus(ctx, common.ErrUnauthenticated)
		}

		account, err := s.accounts.Authorize(ctx, token)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}

		ctx = context.WithValue(ctx, accountKey, account)
	}

	return handler(ctx, req)
}

type rpcMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRPCMetrics(reg prometheus.Registerer) *rpcMetrics {
	f := promauto.With(reg)
	return &rpcMetrics{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitorhub_grpc_requests_total",
			Help: "gRPC calls by method and status code.",
		}, []string{"method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitorhub_grpc_request_duration_seconds",
			Help:    "gRPC call latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	s.metrics.calls.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	s.metrics.duration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

	return resp, err
}
