package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	pb "github.com/dmitrijs2005/visitorhub/internal/proto"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

type avatarRequest struct {
	Filename string `json:"filename"`
}

type listRequest struct {
	Skip   int    `json:"skip"`
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

// decode reads req into dst; a Struct that does not fit dst is a
// validation error.
func decode(req *structpb.Struct, dst any) error {
	if err := pb.Decode(req, dst); err != nil {
		return fmt.Errorf("%w: malformed request", common.ErrValidation)
	}
	return nil
}

func (s *GRPCServer) reply(ctx context.Context, v any) (*structpb.Struct, error) {
	out, err := pb.Encode(v)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return out, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in services.RegisterInput
	if err := decode(req, &in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	res, err := s.accounts.Register(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(ctx, models.NewSessionView(res.Account, res.Token))
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var in loginRequest
	if err := decode(req, &in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	res, err := s.accounts.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(ctx, models.NewSessionView(res.Account, res.Token))
}

func (s *GRPCServer) GetMe(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	account, ok := accountFrom(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}

	return s.reply(ctx, models.CurrentUserView{User: models.NewAccountView(account)})
}

func (s *GRPCServer) UpdateMe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	account, ok := accountFrom(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}

	var in profileRequest
	if err := decode(req, &in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	updated, err := s.accounts.UpdateProfile(ctx, account.ID, models.ProfileUpdate{
		Name:   in.Name,
		Phone:  in.Phone,
		Avatar: in.Avatar,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(ctx, models.CurrentUserView{User: models.NewAccountView(updated)})
}

func (s *GRPCServer) ListVisitors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	if _, ok := accountFrom(ctx); !ok && !s.publicList {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}

	var in listRequest
	if err := decode(req, &in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	page, err := s.accounts.ListAccounts(ctx, in.Skip, in.Limit, in.Status)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(ctx, models.NewVisitorListView(page))
}

func (s *GRPCServer) AvatarUpload(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	account, ok := accountFrom(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}

	var in avatarRequest
	if err := decode(req, &in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	upload, err := s.accounts.AvatarUpload(ctx, account.ID, in.Filename)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.reply(ctx, upload)
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	return s.reply(ctx, map[string]string{"status": "OK"})

}
