package mcp

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/risk"
)

// ClientConfig wires a Client to its remote endpoint and credentials.
type ClientConfig struct {
	URL     string
	Token   string
	Secret  string
	Timeout time.Duration // default 5s
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// Client is the engine-side RPC client. It satisfies
// engine.PolicyEvaluator.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient builds a Client.
func NewClient(cfg ClientConfig) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Evaluate sends a signed evaluate_plan request and returns the
// resulting risk.Assessment. On transport failure, timeout, or a
// non-ok response, it returns an error; the engine is responsible for
// falling back to its local heuristic.
func (c *Client) Evaluate(ctx context.Context, plan domain.ChangePlan, reg *inventory.Registry) (risk.Assessment, error) {
	requestID := uuid.NewString()
	req := NewEvaluateRequest(requestID, plan, reg)

	body, err := json.Marshal(req)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: marshal request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	nonce, err := randomNonce()
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: generate nonce: %w", err)
	}
	signature := Sign(c.cfg.Secret, timestamp, nonce, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderAuthorization, "Bearer "+c.cfg.Token)
	httpReq.Header.Set(HeaderTimestamp, timestamp)
	httpReq.Header.Set(HeaderNonce, nonce)
	httpReq.Header.Set(HeaderSignature, signature)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: transport error: %w", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: decode response: %w", err)
	}

	if !resp.OK {
		if resp.Error != nil {
			return risk.Assessment{}, fmt.Errorf("mcp client: policy service rejected request: %s: %s", resp.Error.Code, resp.Error.Message)
		}
		return risk.Assessment{}, fmt.Errorf("mcp client: policy service returned ok=false with no error detail")
	}
	if resp.Result == nil {
		return risk.Assessment{}, fmt.Errorf("mcp client: policy service returned ok=true with no result")
	}

	return risk.Assessment{
		Level:            risk.Level(resp.Result.RiskLevel),
		BlastRadiusScore: resp.Result.BlastRadiusScore,
		RequiresApproval: resp.Result.RequiresApproval,
		Reasons:          resp.Result.Reasons,
		Evidence:         resp.Result.Evidence,
	}, nil
}

func randomNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
