package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"langcore/internal/ast"
	"langcore/internal/diagnostics"
	"langcore/internal/logging"
)

// request and response mirror the JSON-RPC envelope LSP 3.17 sends over
// stdio, framed with a Content-Length header.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server wraps a Manager with the stdio LSP transport: Content-Length framed
// JSON-RPC in on stdin, framed JSON-RPC (responses plus unsolicited
// publishDiagnostics notifications) out on stdout.
type Server struct {
	mgr *Manager
	out io.Writer
	mu  sync.Mutex // serializes writes to out
}

// NewServer wraps mgr for stdio serving.
func NewServer(mgr *Manager, out io.Writer) *Server {
	return &Server{mgr: mgr, out: out}
}

// ServeStdio reads requests from in until ctx is cancelled, EOF, or an
// "exit" notification arrives.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := readMessage(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("lsp: read message: %w", err)
		}

		resp, exit := s.handle(ctx, req)
		if exit {
			return nil
		}
		if resp != nil {
			if err := s.write(resp); err != nil {
				return fmt.Errorf("lsp: write response: %w", err)
			}
		}
	}
}

func readMessage(r *bufio.Reader) (request, error) {
	var contentLength int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return request{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
			if err == nil {
				contentLength = n
			}
		}
	}
	if contentLength <= 0 {
		return request{}, fmt.Errorf("lsp: missing or zero Content-Length header")
	}
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return request{}, err
	}
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return request{}, fmt.Errorf("lsp: decode request body: %w", err)
	}
	return req, nil
}

func (s *Server) write(v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(body), body)
	return err
}

// handle dispatches one request and returns the response to write (nil for
// notifications) and whether the server should stop serving.
func (s *Server) handle(ctx context.Context, req request) (*response, bool) {
	switch req.Method {
	case "initialize":
		return &response{JSONRPC: "2.0", ID: req.ID, Result: initializeResult()}, false

	case "initialized", "$/cancelRequest":
		return nil, false

	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, false
		}
		diags := s.mgr.DidOpen(ctx, p.TextDocument.URI, p.TextDocument.Text, p.TextDocument.Version)
		s.publishDiagnostics(p.TextDocument.URI, diags)
		return nil, false

	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, false
		}
		if len(p.ContentChanges) == 0 {
			return nil, false
		}
		diags := s.mgr.DidChange(ctx, p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text, p.TextDocument.Version)
		s.publishDiagnostics(p.TextDocument.URI, diags)
		return nil, false

	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, false
		}
		s.mgr.DidClose(p.TextDocument.URI)
		return nil, false

	case "textDocument/hover":
		return s.handleHover(req), false

	case "textDocument/completion":
		return s.handleCompletion(req), false

	case "shutdown":
		return &response{JSONRPC: "2.0", ID: req.ID, Result: nil}, false

	case "exit":
		return nil, true

	default:
		if req.ID == nil {
			return nil, false // unhandled notification: ignore
		}
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found: " + req.Method}}, false
	}
}

func (s *Server) handleHover(req request) *response {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	result, err := s.mgr.Hover(p.TextDocument.URI, p.Position.Line, p.Position.Character)
	if err != nil {
		logging.Get(logging.CategoryLSP).Warn("hover %s: %v", p.TextDocument.URI, err)
		return &response{JSONRPC: "2.0", ID: req.ID, Result: nil}
	}
	if result == nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Result: nil}
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{
		"contents": map[string]string{"kind": "markdown", "value": result.Contents},
	}}
}

func (s *Server) handleCompletion(req request) *response {
	var p positionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return &response{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32602, Message: err.Error()}}
	}
	items, err := s.mgr.Completion(p.TextDocument.URI, p.Position.Line, p.Position.Character)
	if err != nil {
		logging.Get(logging.CategoryLSP).Warn("completion %s: %v", p.TextDocument.URI, err)
		return &response{JSONRPC: "2.0", ID: req.ID, Result: []interface{}{}}
	}
	out := make([]map[string]interface{}, len(items))
	for i, it := range items {
		out[i] = map[string]interface{}{
			"label":  it.Label,
			"detail": it.Detail,
			"kind":   lspCompletionKind(it.Kind),
		}
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: out}
}

func (s *Server) publishDiagnostics(uri string, diags []diagnostics.Diagnostic) {
	idx := ast.NewLineIndex("") // placeholder when a document has no text; overwritten below
	if d, err := s.mgr.document(uri); err == nil {
		idx = d.tree.LineIdx
	}
	items := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		lc := d.Resolve(idx)
		items[i] = map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]int{"line": lc.StartLine - 1, "character": lc.StartColumn},
				"end":   map[string]int{"line": lc.EndLine - 1, "character": lc.EndColumn},
			},
			"severity": lspSeverity(d.Severity),
			"code":     d.Code,
			"source":   "langcore",
			"message":  d.Message,
		}
	}
	s.write(notification{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]interface{}{
			"uri":         uri,
			"diagnostics": items,
		},
	})
}

func initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync":   1, // full sync
			"hoverProvider":      true,
			"completionProvider": map[string]interface{}{"triggerCharacters": []string{".", " "}},
		},
	}
}

func lspSeverity(sev diagnostics.Severity) int {
	switch sev {
	case diagnostics.SeverityError:
		return 1
	case diagnostics.SeverityWarning:
		return 2
	case diagnostics.SeverityInfo:
		return 3
	default:
		return 4
	}
}

func lspCompletionKind(k CompletionKind) int {
	switch k {
	case CompletionMethod:
		return 2
	case CompletionProperty:
		return 10
	case CompletionType:
		return 7
	default:
		return 6 // Variable
	}
}

type textDocumentItem struct {
	URI     string `json:"uri"`
	Text    string `json:"text"`
	Version int    `json:"version"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didChangeParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Version int    `json:"version"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
}

type positionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}
