// Package pb registers the fleettrack.v1.TrackingService. Messages are
// google.protobuf.Struct values so clients need no generated stubs.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	TrackingService_RecordLocation_FullMethodName  = "/fleettrack.v1.TrackingService/RecordLocation"
	TrackingService_CurrentRegion_FullMethodName   = "/fleettrack.v1.TrackingService/CurrentRegion"
	TrackingService_DriversInRegion_FullMethodName = "/fleettrack.v1.TrackingService/DriversInRegion"
)

type TrackingServiceServer interface {
	RecordLocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CurrentRegion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DriversInRegion(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterTrackingServiceServer(s grpc.ServiceRegistrar, srv TrackingServiceServer) {
	s.RegisterService(&TrackingService_ServiceDesc, srv)
}

type TrackingServiceClient interface {
	RecordLocation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CurrentRegion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DriversInRegion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type trackingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTrackingServiceClient(cc grpc.ClientConnInterface) TrackingServiceClient {
	return &trackingServiceClient{cc}
}

func (c *trackingServiceClient) RecordLocation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TrackingService_RecordLocation_FullMethodName, in, opts...)
}

func (c *trackingServiceClient) CurrentRegion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TrackingService_CurrentRegion_FullMethodName, in, opts...)
}

func (c *trackingServiceClient) DriversInRegion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TrackingService_DriversInRegion_FullMethodName, in, opts...)
}

func (c *trackingServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func unaryHandler(fullMethod string, call func(TrackingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TrackingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TrackingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var TrackingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fleettrack.v1.TrackingService",
	HandlerType: (*TrackingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RecordLocation",
			Handler:    unaryHandler(TrackingService_RecordLocation_FullMethodName, TrackingServiceServer.RecordLocation),
		},
		{
			MethodName: "CurrentRegion",
			Handler:    unaryHandler(TrackingService_CurrentRegion_FullMethodName, TrackingServiceServer.CurrentRegion),
		},
		{
			MethodName: "DriversInRegion",
			Handler:    unaryHandler(TrackingService_DriversInRegion_FullMethodName, TrackingServiceServer.DriversInRegion),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleettrack/v1/tracking.proto",
}
