// Package proto is the gRPC contract of visitorhub.v1.VisitorService.
//
// Requests and replies are google.protobuf.Struct values carrying the same
// JSON documents the HTTP API exchanges, so the service needs no generated
// message types. Encode and Decode convert between Go values and Structs.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "visitorhub.v1.VisitorService"

// Full method names, as seen by interceptors.
const (
	RegisterMethod     = "/" + ServiceName + "/Register"
	LoginMethod        = "/" + ServiceName + "/Login"
	GetMeMethod        = "/" + ServiceName + "/GetMe"
	UpdateMeMethod     = "/" + ServiceName + "/UpdateMe"
	ListVisitorsMethod = "/" + ServiceName + "/ListVisitors"
	AvatarUploadMethod = "/" + ServiceName + "/AvatarUpload"
	PingMethod         = "/" + ServiceName + "/Ping"
)

type VisitorServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVisitors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AvatarUpload(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedVisitorServiceServer can be embedded to satisfy
// VisitorServiceServer with methods that report codes.Unimplemented.
type UnimplementedVisitorServiceServer struct{}

func (UnimplementedVisitorServiceServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedVisitorServiceServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedVisitorServiceServer) GetMe(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMe not implemented")
}
func (UnimplementedVisitorServiceServer) UpdateMe(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateMe not implemented")
}
func (UnimplementedVisitorServiceServer) ListVisitors(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListVisitors not implemented")
}
func (UnimplementedVisitorServiceServer) AvatarUpload(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AvatarUpload not implemented")
}
func (UnimplementedVisitorServiceServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

type unaryCall func(srv VisitorServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts call to grpc.MethodHandler the way protoc-gen-go-grpc
// output does.
func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VisitorServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VisitorServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var VisitorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VisitorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(RegisterMethod, VisitorServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(LoginMethod, VisitorServiceServer.Login)},
		{MethodName: "GetMe", Handler: unaryHandler(GetMeMethod, VisitorServiceServer.GetMe)},
		{MethodName: "UpdateMe", Handler: unaryHandler(UpdateMeMethod, VisitorServiceServer.UpdateMe)},
		{MethodName: "ListVisitors", Handler: unaryHandler(ListVisitorsMethod, VisitorServiceServer.ListVisitors)},
		{MethodName: "AvatarUpload", Handler: unaryHandler(AvatarUploadMethod, VisitorServiceServer.AvatarUpload)},
		{MethodName: "Ping", Handler: unaryHandler(PingMethod, VisitorServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "visitorhub/v1/visitor.proto",
}

func RegisterVisitorServiceServer(s grpc.ServiceRegistrar, srv VisitorServiceServer) {
	s.RegisterService(&VisitorServiceDesc, srv)
}

type VisitorServiceClient interface {
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetMe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateMe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListVisitors(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	AvatarUpload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type visitorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVisitorServiceClient(cc grpc.ClientConnInterface) VisitorServiceClient {
	return &visitorServiceClient{cc: cc}
}

func (c *visitorServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *visitorServiceClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RegisterMethod, in, opts)
}

func (c *visitorServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoginMethod, in, opts)
}

func (c *visitorServiceClient) GetMe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetMeMethod, in, opts)
}

func (c *visitorServiceClient) UpdateMe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, UpdateMeMethod, in, opts)
}

func (c *visitorServiceClient) ListVisitors(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListVisitorsMethod, in, opts)
}

func (c *visitorServiceClient) AvatarUpload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AvatarUploadMethod, in, opts)
}

func (c *visitorServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PingMethod, in, opts)
}
