// Package grpcserver implements the TrackerService gRPC server.
//
// It delegates all business logic to kanban.Service and handles
// only the gRPC transport concerns: metadata extraction, error mapping,
// and conversion between the domain model and the wire messages.
//
// Messages are google.protobuf.Struct values whose fields use the same
// JSON names as the HTTP API, so the Gateway can forward them unchanged.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "tracker.v1.TrackerService"

// TrackerServiceServer is the server API for TrackerService.
type TrackerServiceServer interface {
	CreateApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summary(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements TrackerServiceServer.
type Server struct {
	svc    *kanban.Service
	logger *slog.Logger
}

var _ TrackerServiceServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given kanban.Service.
func NewServer(svc *kanban.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger}
}

// Register mounts srv on s.
func Register(s grpc.ServiceRegistrar, srv TrackerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// CreateApplication creates an application for the caller.
func (s *Server) CreateApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var in kanban.NewApplication
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, s.toGRPCError(err)
	}

	app, err := s.svc.Create(ctx, userID, in)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"application": app})
}

// GetApplication returns one application with its history.
func (s *Server) GetApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}

	detail, err := s.svc.Get(ctx, userID, id)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"application": detail})
}

// ListApplications returns one page of the caller's applications.
func (s *Server) ListApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var q struct {
		Status  *kanban.Status   `json:"status"`
		Company string           `json:"company"`
		Role    string           `json:"role"`
		Query   string           `json:"q"`
		Page    int              `json:"page"`
		Limit   int              `json:"limit"`
		SortBy  kanban.SortField `json:"sortBy"`
		Order   kanban.SortOrder `json:"order"`
	}
	if err := decode(req, &q); err != nil {
		return nil, err
	}
	f := kanban.ListFilter(q)
	if err := f.Validate(); err != nil {
		return nil, s.toGRPCError(err)
	}

	page, err := s.svc.List(ctx, userID, f)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(page)
}

// UpdateApplication applies a partial update. The status, when present, is
// set without consulting the transition table.
func (s *Server) UpdateApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	var p kanban.Patch
	if err := decode(req, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, s.toGRPCError(err)
	}

	app, err := s.svc.UpdateApplication(ctx, userID, id, p)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"application": app})
}

// ChangeStatus transitions an application to a new Kanban status.
func (s *Server) ChangeStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	var body struct {
		ToStatus string  `json:"toStatus"`
		Reason   *string `json:"reason"`
	}
	if err := decode(req, &body); err != nil {
		return nil, err
	}
	to, err := kanban.ParseStatus(body.ToStatus)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	app, err := s.svc.ChangeStatus(ctx, userID, id, to, body.Reason)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"application": app})
}

// DeleteApplication removes an application and its history.
func (s *Server) DeleteApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	id, err := requiredID(req)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Delete(ctx, userID, id); err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"ok": true})
}

// Summary counts the caller's applications per status.
func (s *Server) Summary(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	sum, err := s.svc.Summary(ctx, userID)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return encode(map[string]any{"summary": sum})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func (s *Server) toGRPCError(err error) error {
	if errors.Is(err, kanban.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var te *kanban.TransitionError
	if errors.As(err, &te) {
		return status.Error(codes.FailedPrecondition, te.Error())
	}
	var ve *kanban.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	s.logger.Error("rpc failed", "err", err)
	return status.Error(codes.Internal, "internal server error")
}

func requiredID(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["id"]
	if !ok || v.GetStringValue() == "" {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	return v.GetStringValue(), nil
}

// decode reads a Struct into a JSON-tagged Go value.
func decode(req *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// encode converts a JSON-tagged Go value to a Struct.
func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// ─── Service descriptor ───────────────────────────────────────────────────────

type unaryMethod func(TrackerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TrackerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fmt.Sprintf("/%s/%s", ServiceName, name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TrackerServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateApplication", TrackerServiceServer.CreateApplication),
		unary("GetApplication", TrackerServiceServer.GetApplication),
		unary("ListApplications", TrackerServiceServer.ListApplications),
		unary("UpdateApplication", TrackerServiceServer.UpdateApplication),
		unary("ChangeStatus", TrackerServiceServer.ChangeStatus),
		unary("DeleteApplication", TrackerServiceServer.DeleteApplication),
		unary("Summary", TrackerServiceServer.Summary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracker/v1/tracker.proto",
}
