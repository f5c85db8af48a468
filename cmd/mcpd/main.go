// Command mcpd runs a standalone policy-evaluation server speaking the
// authenticated MCP protocol. Its Evaluator wraps the same blast-radius
// heuristic the engine falls back to locally; operators who want a
// genuinely independent policy only need to replace buildEvaluator.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/mcp"
	"github.com/summit/cfo/internal/risk"
)

func main() {
	var port int
	var auditPath string
	flag.IntVar(&port, "port", 8443, "port to listen on")
	flag.StringVar(&auditPath, "audit", "mcpd-audit.log", "path to the audit log")
	flag.Parse()

	token := os.Getenv("CFO_AUTH_TOKEN")
	secret := os.Getenv("CFO_HMAC_SECRET")
	if token == "" || secret == "" {
		log.Fatal("CFO_AUTH_TOKEN and CFO_HMAC_SECRET must both be set")
	}

	audit, err := mcp.OpenAuditLog(auditPath)
	if err != nil {
		log.Fatalf("failed to open audit log: %v", err)
	}
	defer audit.Close()

	srv := mcp.NewServer(mcp.AuthConfig{Token: token, Secret: secret}, buildEvaluator(), audit)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("mcpd listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func buildEvaluator() mcp.Evaluator {
	return func(params mcp.EvaluateParams) (mcp.EvaluateResult, error) {
		reg, err := inventory.New(params.Inventory)
		if err != nil {
			return mcp.EvaluateResult{}, fmt.Errorf("build registry from submitted inventory: %w", err)
		}

		assessment := risk.Assess(params.Plan, reg)
		return mcp.EvaluateResult{
			RiskLevel:        string(assessment.Level),
			BlastRadiusScore: assessment.BlastRadiusScore,
			RequiresApproval: assessment.RequiresApproval,
			Reasons:          assessment.Reasons,
			Evidence:         assessment.Evidence,
		}, nil
	}
}
