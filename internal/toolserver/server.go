package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"langcore/internal/entity"
	"langcore/internal/index"
	"langcore/internal/logging"
)

// defaultMaxConcurrent bounds in-flight tool calls, the "bounded worker
// pool for long operations" spec §5 requires of cooperative request
// handlers (each handler here is a fast index lookup, but the pool still
// caps how many run at once under request bursts).
const defaultMaxConcurrent = 32

// drainTimeout bounds how long ServeStdio waits for in-flight requests to
// finish once asked to stop.
const drainTimeout = 5 * time.Second

// Server answers find_type/get_type_methods/check_type_compatibility/
// validate_method_call requests against a live Unified Index snapshot.
type Server struct {
	live    *index.Live
	execCtx entity.Availability
	sem     *semaphore.Weighted

	outMu sync.Mutex
	out   io.Writer

	wg sync.WaitGroup
}

// NewServer creates a Server answering against live under execCtx (the
// default execution context for validate_method_call when a request omits
// its own context).
func NewServer(live *index.Live, execCtx entity.Availability, out io.Writer) *Server {
	return &Server{
		live:    live,
		execCtx: execCtx,
		sem:     semaphore.NewWeighted(defaultMaxConcurrent),
		out:     out,
	}
}

// ServeStdio reads newline-delimited JSON requests from in until ctx is
// cancelled or in reaches EOF, dispatching each to a pooled goroutine and
// writing its response as a newline-delimited JSON line on the Server's
// configured output. On stop, ServeStdio waits up to drainTimeout for
// in-flight requests before returning, mirroring the graceful-shutdown
// drain a SIGINT/SIGTERM handler triggers around this call.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	log := logging.Get(logging.CategoryToolServer)

loop:
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(errResponse(nil, codeProtocolError, "malformed request: "+err.Error()))
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			break loop // ctx cancelled while waiting for a slot
		}
		s.wg.Add(1)
		go func(req request) {
			defer s.wg.Done()
			defer s.sem.Release(1)
			corrID := uuid.New().String()
			log.Debug("request %s method=%s id=%s", corrID, req.Method, string(req.ID))
			s.write(s.handle(ctx, req))
		}(req)
	}

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		log.Warn("timed out waiting for in-flight tool calls to drain")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("toolserver: read request: %w", err)
	}
	return nil
}

func (s *Server) write(resp response) {
	body, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, "%s\n", body)
}

// handle dispatches one decoded request against the current snapshot.
func (s *Server) handle(ctx context.Context, req request) response {
	snap := s.live.Current()
	if snap == nil {
		return errResponse(req.ID, codeProtocolError, "index not ready")
	}

	switch req.Method {
	case "find_type":
		var p findTypeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errResponse(req.ID, codeProtocolError, err.Error())
		}
		result, err := handleFindType(snap, p)
		if err != nil {
			return errResponse(req.ID, codeProtocolError, err.Error())
		}
		return okResponse(req.ID, result)

	case "get_type_methods":
		var p getTypeMethodsParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errResponse(req.ID, codeProtocolError, err.Error())
		}
		result, protoErr := handleGetTypeMethods(snap, p)
		if protoErr != nil {
			return response{ID: req.ID, Error: protoErr}
		}
		return okResponse(req.ID, result)

	case "check_type_compatibility":
		var p checkTypeCompatibilityParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errResponse(req.ID, codeProtocolError, err.Error())
		}
		result, protoErr := handleCheckTypeCompatibility(ctx, snap, p)
		if protoErr != nil {
			return response{ID: req.ID, Error: protoErr}
		}
		return okResponse(req.ID, result)

	case "validate_method_call":
		var p validateMethodCallParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errResponse(req.ID, codeProtocolError, err.Error())
		}
		result, protoErr := handleValidateMethodCall(ctx, snap, s.execCtx, p)
		if protoErr != nil {
			return response{ID: req.ID, Error: protoErr}
		}
		return okResponse(req.ID, result)

	default:
		return errResponse(req.ID, codeProtocolError, "unknown method: "+req.Method)
	}
}
