package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/logging"
	"github.com/pokedex-bff/pokedex/pkg/models"
	"github.com/pokedex-bff/pokedex/pkg/pokemon"
)

// Pokedex is the aggregation service the tools delegate to.
type Pokedex interface {
	List(ctx context.Context, params pokemon.ListParams) (models.ListResponse, error)
	Get(ctx context.Context, name string) (models.Pokemon, error)
	Evolution(ctx context.Context, name string) (models.EvolutionNode, error)
}

// CacheStatter provides cache statistics without coupling to a concrete cache implementation.
type CacheStatter interface {
	Stats(ctx context.Context) (models.CacheStats, error)
}

// maxLineSize bounds a single JSON-RPC message.
const maxLineSize = 1024 * 1024

// Server is a minimal MCP server that communicates over stdio using JSON-RPC 2.0.
type Server struct {
	pokedex Pokedex
	cache   CacheStatter
	version string
	logger  *zap.Logger
}

// New creates a new MCP Server. cache may be nil.
func New(p Pokedex, cache CacheStatter, version string, logger *zap.Logger) *Server {
	return &Server{
		pokedex: p,
		cache:   cache,
		version: version,
		logger:  logging.OrNop(logger).Named("mcp"),
	}
}

// Run reads JSON-RPC requests from r line-by-line and writes responses to w.
// It blocks until r is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(w, rpcError(nil, CodeParseError, "parse error"))
			continue
		}
		if req.JSONRPC != jsonrpcVersion {
			s.writeResponse(w, rpcError(req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\""))
			continue
		}

		// Notifications carry no id and get no response.
		if resp := s.dispatch(ctx, &req); resp != nil && len(req.ID) > 0 {
			s.writeResponse(w, resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "pokedex", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return result(req.ID, ToolsListResult{Tools: allTools})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return rpcError(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcError(req.ID, CodeInvalidParams, "invalid params")
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return result(req.ID, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
	}

	s.logger.Debug("tool call", zap.String("tool", params.Name))
	return result(req.ID, handler(ctx, s, params.Arguments))
}

func (s *Server) writeResponse(w io.Writer, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}
