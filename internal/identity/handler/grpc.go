package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"promanage/backend/internal/identity/domain"
	"promanage/backend/internal/identity/service"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/rbac"
)

// SessionServiceName is the fully qualified gRPC service name.
const SessionServiceName = "promanage.session.v1.SessionService"

// Full method names, used by the interceptor chain.
const (
	MethodRegister = "/" + SessionServiceName + "/Register"
	MethodLogin    = "/" + SessionServiceName + "/Login"
	MethodRefresh  = "/" + SessionServiceName + "/Refresh"
	MethodLogout   = "/" + SessionServiceName + "/Logout"
	MethodWhoAmI   = "/" + SessionServiceName + "/WhoAmI"
)

// SessionServer is the gRPC session API. Requests and responses are
// google.protobuf.Struct documents with the same field names as the REST API.
type SessionServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// SessionServiceDesc describes SessionServer for grpc.Server.RegisterService.
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: SessionServiceName,
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SessionServer.Register),
		unary("Login", SessionServer.Login),
		unary("Refresh", SessionServer.Refresh),
		unary("Logout", SessionServer.Logout),
		unary("WhoAmI", SessionServer.WhoAmI),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "promanage/session/v1/session.proto",
}

func unary(name string, call func(SessionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + SessionServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SessionServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(SessionServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// RegisterSessionServer registers srv on s.
func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

// GRPC implements SessionServer on top of AuthService. Errors are returned
// as *apperr.Error; the server's error interceptor turns them into statuses.
type GRPC struct {
	auth *service.AuthService
}

// NewGRPC returns the gRPC session handler.
func NewGRPC(auth *service.AuthService) *GRPC {
	return &GRPC{auth: auth}
}

var _ SessionServer = (*GRPC)(nil)

func (g *GRPC) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := g.auth.Register(ctx, field(in, "name"), field(in, "email"), field(in, "password"))
	if err != nil {
		return nil, err
	}
	return sessionStruct(res)
}

func (g *GRPC) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := g.auth.Login(ctx, field(in, "email"), field(in, "password"))
	if err != nil {
		return nil, err
	}
	return sessionStruct(res)
}

func (g *GRPC) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token := field(in, "refreshToken")
	if token == "" {
		return nil, ErrRefreshTokenRequired
	}
	res, err := g.auth.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"accessToken": res.AccessToken,
		"expiresAt":   res.ExpiresAt.Format(time.RFC3339),
	})
}

func (g *GRPC) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.auth.Logout(ctx, p.ID); err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"message": "Logged out successfully"})
}

func (g *GRPC) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := rbac.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	u, err := g.auth.Me(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"user": userMap(*u)})
}

func field(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func userMap(u domain.Summary) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      string(u.Role),
		"createdAt": u.CreatedAt.Format(time.RFC3339),
	}
}

func sessionStruct(res *service.AuthResult) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"user":             userMap(res.User),
		"accessToken":      res.AccessToken,
		"refreshToken":     res.RefreshToken,
		"accessExpiresAt":  res.AccessExpiresAt.Format(time.RFC3339),
		"refreshExpiresAt": res.RefreshExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "encode session").Wrap(err)
	}
	return s, nil
}
