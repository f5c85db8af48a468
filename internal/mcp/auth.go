package mcp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Headers used by the authenticated MCP protocol.
const (
	HeaderAuthorization = "Authorization"
	HeaderTimestamp     = "X-MCP-Timestamp"
	HeaderNonce         = "X-MCP-Nonce"
	HeaderSignature     = "X-MCP-Signature"
)

// AuthConfig tunes authentication tolerances. Zero-value AuthConfig
// uses the documented defaults (60s clock skew, 300s nonce TTL).
type AuthConfig struct {
	Token             string
	Secret            string
	AllowedClockSkew  time.Duration // default 60s
	NonceTTL          time.Duration // default 300s
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.AllowedClockSkew <= 0 {
		c.AllowedClockSkew = 60 * time.Second
	}
	if c.NonceTTL <= 0 {
		c.NonceTTL = 300 * time.Second
	}
	return c
}

// Sign computes hex(HMAC-SHA256(secret, "<ts>\n<nonce>\n<hex(sha256(body))>")).
// This mirrors the HMAC-over-JSON pattern used for manifest signing in
// gcm/internal/signature and bgpr-controller/controller/manifest.go,
// generalized to cover the timestamp+nonce replay-protection fields
// those simpler signers did not need.
func Sign(secret string, timestamp string, nonce string, body []byte) string {
	bodyDigest := sha256.Sum256(body)
	signingInput := fmt.Sprintf("%s\n%s\n%s", timestamp, nonce, hex.EncodeToString(bodyDigest[:]))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the expected HMAC
// for (timestamp, nonce, body), using a constant-time comparison.
func VerifySignature(secret, timestamp, nonce string, body []byte, signature string) bool {
	expected := Sign(secret, timestamp, nonce, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NonceStore tracks nonce -> first-seen-timestamp with TTL-based
// eviction, guarded by a mutex since the server may handle concurrent
// requests.
type NonceStore struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
}

// NewNonceStore builds a NonceStore with the given TTL.
func NewNonceStore(ttl time.Duration) *NonceStore {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &NonceStore{seen: map[string]time.Time{}, ttl: ttl}
}

// CheckAndRecord reports whether nonce was already seen within the TTL
// window as of now. If not, it records nonce as seen at now and
// returns false (fresh). Expired entries are evicted opportunistically.
func (s *NonceStore) CheckAndRecord(nonce string, now time.Time) (replayed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n, seenAt := range s.seen {
		if now.Sub(seenAt) > s.ttl {
			delete(s.seen, n)
		}
	}

	if seenAt, ok := s.seen[nonce]; ok && now.Sub(seenAt) <= s.ttl {
		return true
	}
	s.seen[nonce] = now
	return false
}
