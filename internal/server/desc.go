package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "roastume.reviews.v1.ReviewService"
	protoFile   = "roastume/reviews/v1/reviews.proto"

	methodUpload       = "/" + ServiceName + "/Upload"
	methodGetReview    = "/" + ServiceName + "/GetReview"
	methodExportReview = "/" + ServiceName + "/ExportReview"
)

// ReviewServiceServer is the server API for the review service.
// Messages are protobuf well-known types so no generated code is needed.
type ReviewServiceServer interface {
	// Upload accepts a PDF and returns {review_id, message, status}.
	Upload(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	// GetReview returns the job identified by the review id.
	GetReview(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// ExportReview returns a completed review as an XLSX workbook.
	ExportReview(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ReviewServiceDesc, srv)
}

var ReviewServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upload", Handler: uploadHandler},
		{MethodName: "GetReview", Handler: getReviewHandler},
		{MethodName: "ExportReview", Handler: exportReviewHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func uploadHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReviewServiceServer).Upload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpload}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReviewServiceServer).Upload(ctx, req.(*wrapperspb.BytesValue))
	})
}

func getReviewHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReviewServiceServer).GetReview(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetReview}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReviewServiceServer).GetReview(ctx, req.(*wrapperspb.StringValue))
	})
}

func exportReviewHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReviewServiceServer).ExportReview(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodExportReview}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(ReviewServiceServer).ExportReview(ctx, req.(*wrapperspb.StringValue))
	})
}

// ReviewServiceClient is the client API for the review service.
type ReviewServiceClient interface {
	Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetReview(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExportReview(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type reviewServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReviewServiceClient(cc grpc.ClientConnInterface) ReviewServiceClient {
	return &reviewServiceClient{cc: cc}
}

func (c *reviewServiceClient) Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodUpload, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reviewServiceClient) GetReview(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetReview, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reviewServiceClient) ExportReview(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodExportReview, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// The file descriptor is registered so server reflection can describe the service.
func init() {
	method := func(name, in, out string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(in),
			OutputType: proto.String(out),
		}
	}
	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String("roastume.reviews.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/struct.proto", "google/protobuf/wrappers.proto"},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("ReviewService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Upload", ".google.protobuf.BytesValue", ".google.protobuf.Struct"),
				method("GetReview", ".google.protobuf.StringValue", ".google.protobuf.Struct"),
				method("ExportReview", ".google.protobuf.StringValue", ".google.protobuf.BytesValue"),
			},
		}},
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
}
