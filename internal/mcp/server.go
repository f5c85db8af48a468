package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Evaluator computes a risk assessment for a plan/inventory projection.
// It is the server-side counterpart to engine.PolicyEvaluator: the
// engine calls the protocol client, the protocol server calls this.
type Evaluator func(params EvaluateParams) (EvaluateResult, error)

// Server is the authenticated MCP policy-evaluation HTTP server.
// The only valid endpoint is POST /mcp.
type Server struct {
	auth      AuthConfig
	nonces    *NonceStore
	evaluate  Evaluator
	audit     *AuditLog
	now       func() time.Time
}

// NewServer builds a Server. audit may be nil to disable audit logging.
func NewServer(auth AuthConfig, evaluate Evaluator, audit *AuditLog) *Server {
	auth = auth.withDefaults()
	return &Server{
		auth:     auth,
		nonces:   NewNonceStore(auth.NonceTTL),
		evaluate: evaluate,
		audit:    audit,
		now:      time.Now,
	}
}

// Router builds the chi router exposing /mcp: RequestID, RealIP, and
// Recoverer middleware wrapping a single narrow RPC surface instead of
// a REST resource tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Post("/mcp", s.handleMCP)
	return r
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, r, "", http.StatusBadRequest, ErrValidation, "unable to read request body", start)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, r, "", http.StatusBadRequest, ErrValidation, "malformed request envelope", start)
		return
	}

	if code, msg := s.authenticate(r, body); code != "" {
		status := http.StatusBadRequest
		s.respondError(w, r, req.RequestID, status, code, msg, start)
		return
	}

	if req.Method != MethodEvaluatePlan {
		s.respondError(w, r, req.RequestID, http.StatusBadRequest, ErrUnsupportedMethod, fmt.Sprintf("unsupported method %q", req.Method), start)
		return
	}

	result, err := s.evaluate(req.Params)
	if err != nil {
		s.respondError(w, r, req.RequestID, http.StatusInternalServerError, ErrServer, "internal evaluation error", start)
		return
	}

	resp := Response{APIVersion: APIVersion, RequestID: req.RequestID, OK: true, Result: &result}
	s.writeJSON(w, http.StatusOK, resp)
	s.recordAudit(req.RequestID, r.URL.Path, http.StatusOK, OutcomeOK, "", "", start)
}

// authenticate validates the Authorization/timestamp/nonce/signature
// headers against body. Returns a non-empty error code on rejection.
func (s *Server) authenticate(r *http.Request, body []byte) (ErrorCode, string) {
	authHeader := r.Header.Get(HeaderAuthorization)
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if !strings.HasPrefix(authHeader, "Bearer ") || token != s.auth.Token {
		return ErrUnauthorized, "invalid or missing bearer token"
	}

	tsHeader := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	signature := r.Header.Get(HeaderSignature)
	if tsHeader == "" || nonce == "" || signature == "" {
		return ErrValidation, "missing timestamp, nonce, or signature header"
	}

	tsSeconds, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return ErrValidation, "malformed timestamp header"
	}
	ts := time.Unix(tsSeconds, 0)
	now := s.now()
	skew := now.Sub(ts)
	if skew < 0 {
		skew = -skew
	}
	if skew > s.auth.AllowedClockSkew {
		return ErrValidation, "timestamp outside allowed clock skew"
	}

	if !VerifySignature(s.auth.Secret, tsHeader, nonce, body, signature) {
		return ErrUnauthorized, "signature verification failed"
	}

	if s.nonces.CheckAndRecord(nonce, now) {
		return ErrValidation, "nonce has already been used within its TTL window"
	}

	return "", ""
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, requestID string, status int, code ErrorCode, message string, start time.Time) {
	resp := Response{
		APIVersion: APIVersion,
		RequestID:  requestID,
		OK:         false,
		Error:      &RPCError{Code: code, Message: message},
	}
	s.writeJSON(w, status, resp)

	outcome := OutcomeReject
	if code == ErrServer {
		outcome = OutcomeError
	}
	s.recordAudit(requestID, r.URL.Path, status, outcome, string(code), message, start)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) recordAudit(requestID, path string, status int, outcome AuditOutcome, errorCode, errorMessage string, start time.Time) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(AuditEvent{
		RequestID:     requestID,
		Method:        MethodEvaluatePlan,
		HTTPStatus:    status,
		Outcome:       outcome,
		ErrorCode:     errorCode,
		ErrorMessage:  errorMessage,
		DurationMs:    time.Since(start).Milliseconds(),
		Path:          path,
		TimestampUnix: time.Now().Unix(),
	})
}
