// Command cfo runs the CLOS fabric intent-orchestration runner loop:
// load inventory and pending intents from local files, plan and apply
// each intent through the engine, and report results.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/summit/cfo/internal/config"
	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/engine"
	"github.com/summit/cfo/internal/executor"
	"github.com/summit/cfo/internal/guard"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/mcp"
	"github.com/summit/cfo/internal/planner"
	"github.com/summit/cfo/internal/runner"
	"github.com/summit/cfo/internal/source"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "cfo.yaml", "path to the runner configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	audit, err := mcp.OpenAuditLog(cfg.AuditPath)
	if err != nil {
		log.Fatalf("failed to open audit log: %v", err)
	}
	defer audit.Close()

	// The in-memory executor is the bundled reference transport; wiring
	// a real gNMI client factory means swapping this for
	// executor.NewGNMIExecutor with a ClientFactory built from each
	// device's Endpoints.
	engCfg := engine.Config{
		Planner:  planner.New(planner.Config{}),
		Guard:    guard.New(buildGuardConfig(cfg)),
		Executor: executor.NewMemoryExecutor(nil, true),
		Auditor:  audit,
	}

	if cfg.UseMCP {
		engCfg.Policy = mcp.NewClient(mcp.ClientConfig{
			URL:    cfg.MCPURL,
			Token:  cfg.AuthToken,
			Secret: cfg.HMACSecret,
		})
	}

	eng := engine.New(engCfg)

	loadInventory := func() (*inventory.Registry, error) {
		return source.LoadInventory(cfg.InventoryPath)
	}
	loadIntents := func() ([]domain.IntentChange, error) {
		return source.LoadIntents(cfg.IntentsPath)
	}

	r := runner.New(eng, loadInventory, loadIntents, cfg.Interval())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("cfo runner starting: interval=%s inventory=%s intents=%s use_mcp=%t", cfg.Interval(), cfg.InventoryPath, cfg.IntentsPath, cfg.UseMCP)
	if err := r.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runner stopped: %v", err)
	}
}

func buildGuardConfig(cfg config.Config) guard.Config {
	var g guard.Config
	if cfg.Guard.DefaultMode != "" {
		g.DefaultMode = guard.Mode(cfg.Guard.DefaultMode)
	}
	if cfg.Guard.HighRiskMode != "" {
		g.HighRiskMode = guard.Mode(cfg.Guard.HighRiskMode)
	}
	g.RequireApprovalBlocksApply = cfg.Guard.RequireApprovalBlocksApply
	return g
}
