package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	jsonrpcVersion = "2.0"

	// maxMessageSize bounds a single inbound line.
	maxMessageSize = 4 * 1024 * 1024
)

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server answers MCP requests read from a line-oriented stream.
type Server struct {
	handler Handler
	info    ServerInfo
	logger  *zap.Logger

	writeMu sync.Mutex
	out     io.Writer

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger used for protocol tracing.
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a Server that dispatches tool calls to h.
func NewServer(h Handler, info ServerInfo, opts ...ServerOption) *Server {
	s := &Server{
		handler:  h,
		info:     info,
		logger:   zap.NewNop(),
		inflight: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads newline-delimited JSON-RPC messages from in and writes
// responses to out until in is exhausted or ctx is cancelled. Tool calls run
// concurrently with the read loop so that pings and cancellations are
// handled while a call is in progress. Serve returns after every started
// call has finished.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out

	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for gctx.Err() == nil && scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("malformed message", zap.Error(err))
			if err := s.writeError(nil, CodeParseError, "Parse error"); err != nil {
				return err
			}
			continue
		}
		if err := s.dispatch(gctx, g, &req); err != nil {
			s.logger.Error("failed to write response", zap.Error(err))
			break
		}
	}

	readErr := scanner.Err()
	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("reading requests: %w", readErr)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, g *errgroup.Group, req *request) error {
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.isNotification() {
			return nil
		}
		return s.writeError(req.ID, CodeInvalidRequest, "Invalid Request")
	}

	if req.isNotification() {
		s.notification(req)
		return nil
	}

	s.logger.Debug("request", zap.String("method", req.Method), zap.ByteString("id", req.ID))

	switch req.Method {
	case "initialize":
		return s.writeResult(req.ID, s.initialize(req.Params))
	case "ping":
		return s.writeResult(req.ID, struct{}{})
	case "tools/list":
		return s.writeResult(req.ID, map[string][]Tool{"tools": s.handler.Tools()})
	case "tools/call":
		var p callToolParams
		if err := json.Unmarshal(req.Params, &p); err != nil || p.Name == "" {
			return s.writeError(req.ID, CodeInvalidParams, "tools/call requires a tool name")
		}
		callCtx := s.track(ctx, req.ID)
		g.Go(func() error {
			defer s.untrack(req.ID)
			return s.callTool(callCtx, req.ID, p)
		})
		return nil
	default:
		return s.writeError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) initialize(params json.RawMessage) any {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("unreadable initialize params", zap.Error(err))
		}
	}
	version := p.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}
	s.logger.Info("client connected",
		zap.String("client", p.ClientInfo.Name),
		zap.String("client_version", p.ClientInfo.Version),
		zap.String("protocol", version),
	)
	return map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": s.info,
	}
}

func (s *Server) notification(req *request) {
	switch req.Method {
	case "notifications/cancelled":
		var p cancelledParams
		if err := json.Unmarshal(req.Params, &p); err != nil || len(p.RequestID) == 0 {
			s.logger.Warn("ignoring malformed cancellation", zap.ByteString("params", req.Params))
			return
		}
		s.mu.Lock()
		cancel, ok := s.inflight[string(p.RequestID)]
		s.mu.Unlock()
		if ok {
			s.logger.Info("request cancelled by client",
				zap.ByteString("id", p.RequestID),
				zap.String("reason", p.Reason),
			)
			cancel()
		}
	default:
		s.logger.Debug("notification", zap.String("method", req.Method))
	}
}

func (s *Server) track(ctx context.Context, id json.RawMessage) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.inflight[string(id)] = cancel
	s.mu.Unlock()
	return ctx
}

func (s *Server) untrack(id json.RawMessage) {
	s.mu.Lock()
	cancel, ok := s.inflight[string(id)]
	delete(s.inflight, string(id))
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *Server) callTool(ctx context.Context, id json.RawMessage, p callToolParams) error {
	s.logger.Info("tool call", zap.String("tool", p.Name), zap.ByteString("id", id))

	res, err := s.handler.CallTool(ctx, p.Name, p.Arguments)

	// A cancelled request gets no response.
	if ctx.Err() != nil {
		s.logger.Info("dropping response for cancelled call", zap.String("tool", p.Name))
		return nil
	}
	if err != nil {
		code := CodeInternalError
		var coder Coder
		if errors.As(err, &coder) {
			code = coder.RPCCode()
		}
		s.logger.Info("tool call rejected",
			zap.String("tool", p.Name),
			zap.Int("code", code),
			zap.Error(err),
		)
		return s.writeError(id, code, err.Error())
	}
	if res == nil {
		res = &CallToolResult{Content: []Content{}}
	}
	return s.writeResult(id, res)
}

func (s *Server) writeResult(id json.RawMessage, result any) error {
	return s.write(response{JSONRPC: jsonrpcVersion, ID: id, Result: result})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) error {
	return s.write(response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func (s *Server) write(resp response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	data = append(data, '\n')

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
