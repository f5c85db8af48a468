// Package planner turns an intent change into a device-neutral,
// immutable ChangePlan.
package planner

import (
	"fmt"
	"sort"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
	"github.com/summit/cfo/internal/orcherr"
)

// Config tunes planner behavior. Zero-value Config uses the documented
// defaults.
type Config struct {
	MaxDevicesLowRisk    int // default 2
	MaxDevicesMediumRisk int // default 10
	ObservationSeconds   int // default 60
}

func (c Config) withDefaults() Config {
	if c.MaxDevicesLowRisk <= 0 {
		c.MaxDevicesLowRisk = 2
	}
	if c.MaxDevicesMediumRisk <= 0 {
		c.MaxDevicesMediumRisk = 10
	}
	if c.ObservationSeconds <= 0 {
		c.ObservationSeconds = 60
	}
	return c
}

// Planner converts intents into plans.
type Planner struct {
	cfg Config
}

// New builds a Planner with the given config (zero value accepted).
func New(cfg Config) *Planner {
	return &Planner{cfg: cfg.withDefaults()}
}

// Plan implements plan_change(intent, inventory) -> Plan. It is a pure
// function of its arguments: equal inputs produce an equal plan, with
// check order following action insertion order, then each action's
// model_paths keys in sorted order. The key order of the incoming
// model_paths object is not kept.
func (p *Planner) Plan(intent domain.IntentChange, reg *inventory.Registry) (domain.ChangePlan, error) {
	actions, err := parseDesired(intent.Desired)
	if err != nil {
		return domain.ChangePlan{}, err
	}

	if err := validateActions(actions, reg); err != nil {
		return domain.ChangePlan{}, err
	}

	checks := make([]domain.VerificationCheck, 0)
	for _, a := range actions {
		for _, path := range a.OrderedPaths() {
			checks = append(checks, domain.VerificationCheck{
				Type:     domain.CheckPathEquals,
				Device:   a.Device,
				Path:     path,
				Expected: a.ModelPaths[path],
			})
		}
	}

	plan := domain.ChangePlan{
		PlanID:  intent.ChangeID,
		Actions: actions,
		Verification: domain.VerificationSpec{
			Checks:             checks,
			ObservationSeconds: p.cfg.ObservationSeconds,
		},
		Rollback: domain.RollbackSpec{
			Enabled:  true,
			Triggers: []domain.RollbackTrigger{domain.TriggerAnyVerificationFailure},
		},
		Risk:        p.riskTag(actions),
		Explanation: fmt.Sprintf("plan for intent %s touching %d action(s)", intent.ChangeID, len(actions)),
	}
	return plan, nil
}

func (p *Planner) riskTag(actions []domain.ChangeAction) domain.RiskTag {
	n := len(actions)
	switch {
	case n <= p.cfg.MaxDevicesLowRisk:
		return domain.RiskLow
	case n <= p.cfg.MaxDevicesMediumRisk:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// parseDesired accepts shape A ({actions: [...]}) or shape B
// ({device, model_paths, reason?}), both decoded from an opaque `any`
// (typically the result of json.Unmarshal into interface{}).
func parseDesired(desired any) ([]domain.ChangeAction, error) {
	m, ok := desired.(map[string]any)
	if !ok {
		return nil, &orcherr.InvalidIntent{Reason: "desired payload must be a JSON object"}
	}

	if rawActions, hasActions := m["actions"]; hasActions {
		list, ok := rawActions.([]any)
		if !ok {
			return nil, &orcherr.InvalidIntent{Reason: "actions must be a list"}
		}
		actions := make([]domain.ChangeAction, 0, len(list))
		for i, raw := range list {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, &orcherr.InvalidIntent{Reason: fmt.Sprintf("actions[%d] must be a mapping", i)}
			}
			action, err := parseAction(entry, i)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		}
		return actions, nil
	}

	// Shape B: single-action shorthand.
	action, err := parseAction(m, 0)
	if err != nil {
		return nil, err
	}
	return []domain.ChangeAction{action}, nil
}

func parseAction(entry map[string]any, index int) (domain.ChangeAction, error) {
	device, _ := entry["device"].(string)
	if device == "" {
		return domain.ChangeAction{}, &orcherr.InvalidIntent{Reason: fmt.Sprintf("action[%d] must name a non-empty device", index)}
	}

	rawPaths, _ := entry["model_paths"].(map[string]any)
	if len(rawPaths) == 0 {
		return domain.ChangeAction{}, &orcherr.InvalidIntent{Reason: fmt.Sprintf("action[%d] (device %s) must have a non-empty model_paths mapping", index, device)}
	}

	// JSON decoding loses map key order; sort deterministically so a
	// given input always produces the same verification-check order.
	// (Callers constructing ChangeAction directly from Go, e.g. in
	// tests, should populate Paths themselves to get true insertion
	// order semantics. See ChangeAction.OrderedPaths.)
	keys := make([]string, 0, len(rawPaths))
	for k := range rawPaths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reason, _ := entry["reason"].(string)

	return domain.ChangeAction{
		Device:     device,
		Paths:      keys,
		ModelPaths: rawPaths,
		Reason:     reason,
	}, nil
}

func validateActions(actions []domain.ChangeAction, reg *inventory.Registry) error {
	missingSet := map[string]bool{}
	for _, a := range actions {
		if !reg.Has(a.Device) {
			missingSet[a.Device] = true
		}
	}
	if len(missingSet) == 0 {
		return nil
	}
	missing := make([]string, 0, len(missingSet))
	for name := range missingSet {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return &orcherr.InvalidIntent{
		Reason:         "intent references devices not present in inventory",
		MissingDevices: missing,
	}
}
