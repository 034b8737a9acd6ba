package movienight

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/oggyb/movienight/internal/app"
	svcErr "github.com/oggyb/movienight/internal/errors"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "movienight.v1.MovieNight"

// Registrar ties the MovieNight service into the gRPC server
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar for the MovieNight service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{service: NewService(appCtx)}
}

// NewRegistrarFor registers an already built service, so HTTP and gRPC share one.
func NewRegistrarFor(service *Service) *Registrar {
	return &Registrar{service: service}
}

// Register attaches the MovieNight service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&ServiceDesc, r.service)
}

// ServiceDesc describes the gRPC surface. Messages are the plain structs of
// this package carried by the server's JSON codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", func(s *Service, ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
			return s.Login(ctx, req)
		}),
		unary("CreateUser", func(s *Service, ctx context.Context, req *CreateUserRequest) (*SessionResponse, error) {
			return s.CreateUser(ctx, req)
		}),
		unary("Logout", func(s *Service, ctx context.Context, _ *Empty) (*StatusResponse, error) {
			return s.Logout(ctx, TokenFromContext(ctx))
		}),
		unary("CreatePair", func(s *Service, ctx context.Context, req *CreatePairRequest) (*PartnerResponse, error) {
			return s.CreatePair(ctx, TokenFromContext(ctx), req)
		}),
		unary("GetPair", func(s *Service, ctx context.Context, _ *Empty) (*PartnerResponse, error) {
			return s.GetPair(ctx, TokenFromContext(ctx))
		}),
		unary("GetMovie", func(s *Service, ctx context.Context, _ *Empty) (*MovieResponse, error) {
			return s.GetMovie(ctx, TokenFromContext(ctx))
		}),
		unary("RateMovie", func(s *Service, ctx context.Context, req *RateMovieRequest) (*StatusResponse, error) {
			return s.RateMovie(ctx, TokenFromContext(ctx), req)
		}),
		unary("GetRecommendation", func(s *Service, ctx context.Context, _ *Empty) (*RecommendationList, error) {
			recs, err := s.GetRecommendation(ctx, TokenFromContext(ctx))
			if err != nil {
				return nil, err
			}
			return &RecommendationList{Recommendations: recs}, nil
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "movienight/v1/movienight.proto",
}

// RecommendationList wraps the recommendation array for gRPC, which needs an
// object message.
type RecommendationList struct {
	Recommendations []RecommendationResponse `json:"recommendations"`
}

// TokenFromContext reads the session token from the "authorization" metadata.
// Both a raw token and "Bearer <token>" are accepted.
func TokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	return StripBearer(vals[0])
}

// StripBearer removes an optional "Bearer " prefix.
func StripBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}

// unary adapts a typed service call to a grpc.MethodDesc.
func unary[Req, Resp any](method string, call func(*Service, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, svcErr.ToStatus(svcErr.InvalidArgument("Malformed request"))
			}
			handler := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(*Service), ctx, req.(*Req))
				if err != nil {
					return nil, svcErr.ToStatus(err)
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}
