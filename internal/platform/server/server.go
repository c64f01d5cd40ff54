package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/ogurasousui/store-staffing/internal/adapters/grpc/handler"
	"github.com/ogurasousui/store-staffing/internal/platform/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Handlers はサーバーに登録するサービス実装の集合です。nil のサービスは登録しません。
type Handlers struct {
	Employee   handler.EmployeeServiceServer
	Store      handler.StoreServiceServer
	Assignment handler.AssignmentServiceServer
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr      string
	shutdownTimeout time.Duration
	grpcOpts        []grpc.ServerOption
	grpcServer      *grpc.Server
	health          *health.Server
	log             *charmlog.Logger
}

// Option はサーバーの任意設定です。
type Option func(*Server)

// WithShutdownTimeout は GracefulStop を待つ上限を設定します。超過すると強制停止します。
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithGRPCOptions は grpc.NewServer に渡すオプションを追加します。
func WithGRPCOptions(opts ...grpc.ServerOption) Option {
	return func(s *Server) {
		s.grpcOpts = append(s.grpcOpts, opts...)
	}
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, handlers Handlers, log *charmlog.Logger, opts ...Option) *Server {
	if log == nil {
		log = charmlog.Default()
	}
	s := &Server{
		listenAddr: listenAddr,
		health:     health.NewServer(),
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}

	grpcOpts := append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(log))}, s.grpcOpts...)
	s.grpcServer = grpc.NewServer(grpcOpts...)

	if handlers.Employee != nil {
		handler.RegisterEmployeeServiceServer(s.grpcServer, handlers.Employee)
		s.health.SetServingStatus(handler.EmployeeServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	if handlers.Store != nil {
		handler.RegisterStoreServiceServer(s.grpcServer, handlers.Store)
		s.health.SetServingStatus(handler.StoreServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	if handlers.Assignment != nil {
		handler.RegisterAssignmentServiceServer(s.grpcServer, handlers.Assignment)
		s.health.SetServingStatus(handler.AssignmentServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)

	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は指定されたリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.GracefulStop()
		case <-stopped:
		}
	}()

	s.log.Info("gRPC server listening", "addr", lis.Addr().String())
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。shutdown timeout を過ぎた場合は接続を切断します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()

	if s.shutdownTimeout <= 0 {
		s.grpcServer.GracefulStop()
		return
	}

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		s.log.Warn("graceful stop timed out, forcing stop", "timeout", s.shutdownTimeout)
		s.grpcServer.Stop()
	}
}

// UnaryLoggingInterceptor はリクエストごとにメソッド、ステータス、所要時間を記録します。
// ハンドラーには logger.FromContext で取得できるロガーを渡します。
func UnaryLoggingInterceptor(log *charmlog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqLog := log.With("method", info.FullMethod)

		resp, err := next(logger.WithContext(ctx, reqLog), req)

		code := status.Code(err)
		keyvals := []any{"code", code.String(), "duration", time.Since(start)}
		if err != nil {
			reqLog.Warn("rpc failed", append(keyvals, "err", err)...)
		} else {
			reqLog.Debug("rpc completed", keyvals...)
		}
		return resp, err
	}
}
