package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"

	"github.com/runger/cmdbox/internal/projecttype"
	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/search"
	"github.com/runger/cmdbox/internal/store"
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

// Server dispatches protocol requests against a store and searcher.
type Server struct {
	store        store.Store
	searcher     *search.Searcher
	defaultLimit int
	logger       *slog.Logger
}

// NewServer creates a Server. defaultLimit applies when search_commands
// omits a limit; non-positive falls back to 10.
func NewServer(st store.Store, searcher *search.Searcher, defaultLimit int, logger *slog.Logger) *Server {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{store: st, searcher: searcher, defaultLimit: defaultLimit, logger: logger}
}

// ServeStdio answers requests on stdin/stdout until stdin closes or the
// context is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serveStream(ctx, os.Stdin, os.Stdout)
}

// ServeUnix listens on a unix socket and serves each connection with the
// same line protocol as stdio. Blocks until the context is cancelled.
func (s *Server) ServeUnix(ctx context.Context, socketPath string) error {
	// A stale socket from a crashed process would block the bind.
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket: %w", err)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("serving", "socket", socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept: %w", err)
		}

		go func(c net.Conn) {
			defer c.Close()
			if err := s.serveStream(ctx, c, c); err != nil {
				s.logger.Warn("connection closed", "error", err)
			}
		}(conn)
	}
}

// serveStream runs the request loop on one reader/writer pair. Malformed
// lines and failed calls produce error responses; only transport
// failures end the loop.
func (s *Server) serveStream(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(Response{Error: fmt.Sprintf("invalid request: %v", err)}); err != nil {
				return fmt.Errorf("failed to encode error response: %w", err)
			}
			continue
		}

		resp := s.handle(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handle dispatches one request. Errors never escape: every failure
// becomes an error response so the connection survives.
func (s *Server) handle(ctx context.Context, req Request) Response {
	result, err := s.dispatch(ctx, req.Method, req.Params)
	if err != nil {
		s.logger.Debug("request failed", "method", req.Method, "error", err)
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "search_commands":
		return s.searchCommands(ctx, params)
	case "add_command":
		return s.addCommand(ctx, params)
	case "get_command":
		return s.getCommand(ctx, params)
	case "delete_command":
		return s.deleteCommand(ctx, params)
	case "list_tags":
		return s.store.ListTags(ctx)
	case "list_categories":
		return s.store.ListCategories(ctx)
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (s *Server) searchCommands(ctx context.Context, params json.RawMessage) (any, error) {
	var p searchParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}

	fuzzy := true
	if p.Fuzzy != nil {
		fuzzy = *p.Fuzzy
	}
	limit := p.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	results, err := s.searcher.Search(ctx, search.Query{
		Text:        p.Query,
		OS:          p.OS,
		ProjectType: p.ProjectType,
		Category:    p.Category,
		Tags:        p.Tags,
		Fuzzy:       fuzzy,
		Limit:       limit,
	})
	if err != nil {
		if errors.Is(err, rank.ErrInvalidLimit) {
			return nil, fmt.Errorf("invalid limit: %d", limit)
		}
		return nil, err
	}

	return encodeResults(results), nil
}

func (s *Server) addCommand(ctx context.Context, params json.RawMessage) (any, error) {
	var p addParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Command == "" {
		return nil, errors.New("command is required")
	}

	if p.OS == "" {
		p.OS = runtime.GOOS
	}
	if p.ProjectType == "" {
		p.ProjectType = projecttype.DetectCwd()
	}

	cmd := &store.Command{
		Command:     p.Command,
		Description: p.Description,
		Tags:        p.Tags,
		OS:          optional(p.OS),
		ProjectType: optional(p.ProjectType),
		Category:    optional(p.Category),
		Context:     optional(p.Context),
	}
	id, err := s.store.Add(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return map[string]string{"id": id}, nil
}

func (s *Server) getCommand(ctx context.Context, params json.RawMessage) (any, error) {
	var p idParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, errors.New("id is required")
	}

	cmd, err := s.store.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return encodeCommand(*cmd), nil
}

func (s *Server) deleteCommand(ctx context.Context, params json.RawMessage) (any, error) {
	var p idParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, errors.New("id is required")
	}

	deleted, err := s.store.Delete(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": deleted}, nil
}

func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
