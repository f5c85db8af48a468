package mcp

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// AuditOutcome enumerates the outcome bucket of one audited RPC call.
type AuditOutcome string

const (
	OutcomeOK     AuditOutcome = "ok"
	OutcomeReject AuditOutcome = "reject"
	OutcomeError  AuditOutcome = "error"
)

// AuditEvent is one append-only audit log line.
type AuditEvent struct {
	RequestID    string       `json:"request_id"`
	Method       string       `json:"method"`
	HTTPStatus   int          `json:"http_status"`
	Outcome      AuditOutcome `json:"outcome"`
	ErrorCode    string       `json:"error_code,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	DurationMs   int64        `json:"duration_ms"`
	Path         string       `json:"path"`
	TimestampUnix int64       `json:"ts_unix"`
}

// AuditLog is an append-only, newline-delimited JSON writer. Each
// Record call performs a single buffered write of a complete line, so
// concurrent writers never interleave partial lines.
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenAuditLog opens (creating if necessary) the audit log file at path
// for appending.
func OpenAuditLog(path string) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &AuditLog{file: f}, nil
}

// Record serializes event with sorted keys and appends it as one line.
func (a *AuditLog) Record(event AuditEvent) error {
	// Marshaling through a map[string]any guarantees lexicographically
	// sorted keys. encoding/json sorts map keys, but not struct
	// fields, giving deterministic, diffable audit lines.
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return err
	}
	line, err := json.Marshal(asMap)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.file.Write(line)
	return err
}

// Close closes the underlying file.
func (a *AuditLog) Close() error {
	return a.file.Close()
}

// RecordPolicyFallback implements engine.PolicyAuditor, recording a
// policy-service fallback to the local heuristic.
func (a *AuditLog) RecordPolicyFallback(_ context.Context, planID string, reason string) {
	_ = a.Record(AuditEvent{
		RequestID:     planID,
		Method:        MethodEvaluatePlan,
		Outcome:       OutcomeError,
		ErrorMessage:  reason,
		Path:          "/mcp",
		TimestampUnix: time.Now().Unix(),
	})
}
