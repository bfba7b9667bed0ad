package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	pb "github.com/dmitrijs2005/visitorhub/internal/proto"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.VisitorServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewVisitorClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults, which use plaintext transport.
func NewVisitorClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewVisitorServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

type rpc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

// call encodes in, invokes fn and decodes the reply into out.
func call(ctx context.Context, fn rpc, in, out any) error {
	req, err := pb.Encode(in)
	if err != nil {
		return err
	}
	resp, err := fn(ctx, req)
	if err != nil {
		return mapError(err)
	}
	return pb.Decode(resp, out)
}

func (s *GRPCClient) Register(ctx context.Context, req RegisterRequest) (*models.SessionView, error) {
	var out models.SessionView
	if err := call(ctx, s.client.Register, req, &out); err != nil {
		return nil, err
	}
	s.SetToken(out.Token.AccessToken)
	return &out, nil
}

func (s *GRPCClient) Login(ctx context.Context, username string, password []byte) (*models.SessionView, error) {
	req := map[string]string{"username": username, "password": string(password)}

	var out models.SessionView
	if err := call(ctx, s.client.Login, req, &out); err != nil {
		return nil, err
	}
	s.SetToken(out.Token.AccessToken)
	return &out, nil
}

func (s *GRPCClient) Me(ctx context.Context) (*models.AccountView, error) {
	var out models.CurrentUserView
	if err := call(ctx, s.client.GetMe, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (s *GRPCClient) UpdateMe(ctx context.Context, changes ProfileChanges) (*models.AccountView, error) {
	var out models.CurrentUserView
	if err := call(ctx, s.client.UpdateMe, changes, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (s *GRPCClient) ListVisitors(ctx context.Context, skip, limit int, status string) (*models.VisitorListView, error) {
	req := struct {
		Skip   int    `json:"skip"`
		Limit  int    `json:"limit"`
		Status string `json:"status,omitempty"`
	}{skip, limit, status}

	var out models.VisitorListView
	if err := call(ctx, s.client.ListVisitors, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) AvatarUpload(ctx context.Context, filename string) (*models.AvatarUpload, error) {
	req := map[string]string{"filename": filename}

	var out models.AvatarUpload
	if err := call(ctx, s.client.AvatarUpload, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := call(ctx, s.client.Ping, struct{}{}, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}
