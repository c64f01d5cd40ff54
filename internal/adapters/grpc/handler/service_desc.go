package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// サービス名は staffing/v1 の proto パッケージに対応します。
// メッセージはすべて google.protobuf.Struct です。
const (
	EmployeeServiceName   = "staffing.v1.EmployeeService"
	StoreServiceName      = "staffing.v1.StoreService"
	AssignmentServiceName = "staffing.v1.AssignmentService"
)

// EmployeeServiceServer は EmployeeService のサーバー実装が満たすインターフェースです。
type EmployeeServiceServer interface {
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MakeActive(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MakeInactive(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CurrentAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployeeStores(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// StoreServiceServer は StoreService のサーバー実装が満たすインターフェースです。
type StoreServiceServer interface {
	CreateStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStores(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// AssignmentServiceServer は AssignmentService のサーバー実装が満たすインターフェースです。
type AssignmentServiceServer interface {
	CreateAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAssignment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAssignments(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(EmployeeServiceName, "CreateEmployee", EmployeeServiceServer.CreateEmployee),
		unaryMethod(EmployeeServiceName, "GetEmployee", EmployeeServiceServer.GetEmployee),
		unaryMethod(EmployeeServiceName, "UpdateEmployee", EmployeeServiceServer.UpdateEmployee),
		unaryMethod(EmployeeServiceName, "DeleteEmployee", EmployeeServiceServer.DeleteEmployee),
		unaryMethod(EmployeeServiceName, "ListEmployees", EmployeeServiceServer.ListEmployees),
		unaryMethod(EmployeeServiceName, "MakeActive", EmployeeServiceServer.MakeActive),
		unaryMethod(EmployeeServiceName, "MakeInactive", EmployeeServiceServer.MakeInactive),
		unaryMethod(EmployeeServiceName, "CurrentAssignment", EmployeeServiceServer.CurrentAssignment),
		unaryMethod(EmployeeServiceName, "ListEmployeeStores", EmployeeServiceServer.ListEmployeeStores),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffing/v1/employee.proto",
}

var StoreServiceDesc = grpc.ServiceDesc{
	ServiceName: StoreServiceName,
	HandlerType: (*StoreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(StoreServiceName, "CreateStore", StoreServiceServer.CreateStore),
		unaryMethod(StoreServiceName, "GetStore", StoreServiceServer.GetStore),
		unaryMethod(StoreServiceName, "UpdateStore", StoreServiceServer.UpdateStore),
		unaryMethod(StoreServiceName, "ListStores", StoreServiceServer.ListStores),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffing/v1/store.proto",
}

var AssignmentServiceDesc = grpc.ServiceDesc{
	ServiceName: AssignmentServiceName,
	HandlerType: (*AssignmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(AssignmentServiceName, "CreateAssignment", AssignmentServiceServer.CreateAssignment),
		unaryMethod(AssignmentServiceName, "EndAssignment", AssignmentServiceServer.EndAssignment),
		unaryMethod(AssignmentServiceName, "GetAssignment", AssignmentServiceServer.GetAssignment),
		unaryMethod(AssignmentServiceName, "ListAssignments", AssignmentServiceServer.ListAssignments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "staffing/v1/assignment.proto",
}

// RegisterEmployeeServiceServer は EmployeeService を登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

// RegisterStoreServiceServer は StoreService を登録します。
func RegisterStoreServiceServer(s grpc.ServiceRegistrar, srv StoreServiceServer) {
	s.RegisterService(&StoreServiceDesc, srv)
}

// RegisterAssignmentServiceServer は AssignmentService を登録します。
func RegisterAssignmentServiceServer(s grpc.ServiceRegistrar, srv AssignmentServiceServer) {
	s.RegisterService(&AssignmentServiceDesc, srv)
}

func unaryMethod[S any](service, method string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client は Struct メッセージで各サービスを呼び出すクライアントです。
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient は Client を生成します。
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Call は service の method を req で呼び出します。
func (c *Client) Call(ctx context.Context, service, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+service+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
