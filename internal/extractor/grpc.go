package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	grpcServiceName   = "hr.v1.SlotExtractor"
	grpcExtractMethod = "/" + grpcServiceName + "/Extract"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
)

// GRPCConfig holds configuration for the remote extractor client.
type GRPCConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultGRPCConfig returns defaults for addr.
func DefaultGRPCConfig(addr string) GRPCConfig {
	return GRPCConfig{
		Address:          addr,
		ConnectTimeout:   5 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// GRPCClient calls a remote slot extraction service. Requests and responses
// are google.protobuf.Struct messages carrying the same JSON shape the
// OpenAI extractor parses.
type GRPCClient struct {
	conn   *grpc.ClientConn
	addr   string
	logger *slog.Logger
}

// NewGRPCClient connects to the extractor at cfg.Address and waits until the
// connection is ready.
func NewGRPCClient(cfg GRPCConfig, logger *slog.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		return nil, errors.New("extractor: gRPC address is required")
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor client for %s: %w", cfg.Address, err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("slot extractor at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("Connected to slot extractor service", "address", cfg.Address)
	return &GRPCClient{conn: conn, addr: cfg.Address, logger: logger}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Extract sends text and history to the remote service.
func (c *GRPCClient) Extract(ctx context.Context, text string, history []domain.Message) (Result, error) {
	req, err := encodeRequest(text, history)
	if err != nil {
		return Result{}, err
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, grpcExtractMethod, req, resp); err != nil {
		return Result{}, fmt.Errorf("%w: extract rpc: %v", domain.ErrExternalService, err)
	}
	return Normalize(resp.AsMap())
}

// Close closes the connection.
func (c *GRPCClient) Close() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("failed to close gRPC connection", "error", err)
		}
	}
}

func encodeRequest(text string, history []domain.Message) (*structpb.Struct, error) {
	turns := make([]any, 0, len(history))
	for _, m := range history {
		turns = append(turns, map[string]any{"role": string(m.Role), "content": m.Content})
	}
	req, err := structpb.NewStruct(map[string]any{"text": text, "history": turns})
	if err != nil {
		return nil, fmt.Errorf("encode extract request: %w", err)
	}
	return req, nil
}

func decodeRequest(req *structpb.Struct) (string, []domain.Message) {
	fields := req.GetFields()
	text := fields["text"].GetStringValue()
	var history []domain.Message
	for _, v := range fields["history"].GetListValue().GetValues() {
		turn := v.GetStructValue().GetFields()
		history = append(history, domain.Message{
			Role:    domain.Role(turn["role"].GetStringValue()),
			Content: turn["content"].GetStringValue(),
		})
	}
	return text, history
}

func encodeResult(res Result) (*structpb.Struct, error) {
	slots := make(map[string]any, len(res.Slots))
	for k, v := range res.Slots {
		slots[k] = v
	}
	return structpb.NewStruct(map[string]any{
		"intent":            string(res.Intent),
		"slots":             slots,
		"confidence":        res.Confidence,
		"needsConfirmation": res.NeedsConfirmation,
	})
}

// RegisterGRPCServer exposes ext as the slot extraction service on s.
func RegisterGRPCServer(s *grpc.Server, ext Extractor) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: grpcServiceName,
		HandlerType: (*Extractor)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Extract",
			Handler:    extractHandler,
		}},
		Metadata: "hr/v1/extractor.proto",
	}, ext)
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		text, history := decodeRequest(req.(*structpb.Struct))
		res, err := srv.(Extractor).Extract(ctx, text, history)
		if err != nil {
			return nil, err
		}
		return encodeResult(res)
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: grpcExtractMethod}
	return interceptor(ctx, in, info, call)
}
