package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/open-policy-agent/opa/rego"
	"gopkg.in/yaml.v3"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "policy",
})

const (
	GATE_CONFIG_FILENAME = "gate-config.yaml"

	// DENY_QUERY is the Rego query every gate policy must answer: a set of
	// human-readable denial messages under the deployctl package.
	DENY_QUERY = "data.deployctl.deny"
)

const (
	GATE_LEVEL_BLOCK = "block"
	GATE_LEVEL_WARN  = "warn"
	GATE_LEVEL_OFF   = "off"
)

// GateResult holds the messages produced by the gate policies, keyed by
// policy id and split by enforcement level.
type GateResult struct {
	Blocks   map[string][]string
	Warnings map[string][]string
}

// Blocked reports whether any blocking policy produced a message.
func (r *GateResult) Blocked() bool {
	return len(r.Blocks) > 0
}

// Gate evaluates optional Rego deploy-gate policies against the computed
// deploy plan. Policies live in a directory alongside a gate-config.yaml
// describing name, file and enforcement level per policy.
type Gate struct {
	policiesPath string

	config   models.GateConfig
	prepared map[string]rego.PreparedEvalQuery
}

func NewGate(policiesPath string) *Gate {
	return &Gate{
		policiesPath: policiesPath,
		prepared:     make(map[string]rego.PreparedEvalQuery),
	}
}

// Enabled reports whether a policies directory was configured at all.
func (g *Gate) Enabled() bool {
	return g.policiesPath != ""
}

// LoadAndValidate loads the gate configuration and compiles every policy.
func (g *Gate) LoadAndValidate(ctx context.Context) error {
	if !g.Enabled() {
		logger.Debug("LoadAndValidate: no policies path configured, gate disabled")
		return nil
	}
	logger.Info("LoadAndValidate: starting...")

	if err := g.loadGateConfig(); err != nil {
		return err
	}
	if err := g.validateGateConfig(); err != nil {
		return err
	}

	for id, policy := range g.config.Policies {
		policyPath := filepath.Join(g.policiesPath, policy.FilePath)
		src, err := os.ReadFile(policyPath)
		if err != nil {
			return fmt.Errorf("policy %s: failed to read file: %w", id, err)
		}

		prepared, err := rego.New(
			rego.Query(DENY_QUERY),
			rego.Module(policy.FilePath, string(src)),
		).PrepareForEval(ctx)
		if err != nil {
			return fmt.Errorf("policy %s: failed to compile: %w", id, err)
		}
		g.prepared[id] = prepared
	}

	logger.Infof("LoadAndValidate: done, loaded %d policies.", len(g.config.Policies))
	return nil
}

func (g *Gate) loadGateConfig() error {
	configPath := filepath.Join(g.policiesPath, GATE_CONFIG_FILENAME)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read gate config: %w", err)
	}

	if err := yaml.Unmarshal(data, &g.config); err != nil {
		return fmt.Errorf("failed to parse gate config: %w", err)
	}
	return nil
}

func (g *Gate) validateGateConfig() error {
	if len(g.config.Policies) == 0 {
		return fmt.Errorf("no policies defined in gate config")
	}

	for id, policy := range g.config.Policies {
		if policy.Name == "" {
			return fmt.Errorf("policy %s: name is required", id)
		}
		if policy.Type != "" && policy.Type != "rego" {
			return fmt.Errorf("policy %s: unsupported type %s (only 'rego' is supported)", id, policy.Type)
		}
		if policy.FilePath == "" {
			return fmt.Errorf("policy %s: filePath is required", id)
		}
		if !strings.HasSuffix(policy.FilePath, ".rego") {
			return fmt.Errorf("policy %s: unsupported file extension (must be .rego)", id)
		}
		switch policy.Level {
		case GATE_LEVEL_BLOCK, GATE_LEVEL_WARN, GATE_LEVEL_OFF, "":
		default:
			return fmt.Errorf("policy %s: unknown level %q (must be block, warn or off)", id, policy.Level)
		}
	}
	return nil
}

// Evaluate runs every enabled policy against the plan and buckets denial
// messages by enforcement level. An empty result means the gate is open.
func (g *Gate) Evaluate(ctx context.Context, plan models.DeployPlan) (*GateResult, error) {
	result := &GateResult{
		Blocks:   make(map[string][]string),
		Warnings: make(map[string][]string),
	}
	if !g.Enabled() {
		return result, nil
	}
	logger.Info("Evaluate: starting...")

	input, err := planAsInput(plan)
	if err != nil {
		return nil, err
	}

	for id, policy := range g.config.Policies {
		if policy.Level == GATE_LEVEL_OFF {
			logger.WithField("policyId", id).Debug("Policy disabled, skipping")
			continue
		}

		msgs, err := g.evaluatePolicy(ctx, id, input)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate policy %s: %w", id, err)
		}
		if len(msgs) == 0 {
			continue
		}

		logger.WithField("policyId", id).WithField("msgs", msgs).Debug("Policy produced denials")
		if policy.Level == GATE_LEVEL_WARN {
			result.Warnings[id] = msgs
		} else {
			result.Blocks[id] = msgs
		}
	}

	logger.Info("Evaluate: done.")
	return result, nil
}

func (g *Gate) evaluatePolicy(ctx context.Context, id string, input any) ([]string, error) {
	prepared, ok := g.prepared[id]
	if !ok {
		return nil, fmt.Errorf("policy %s was not compiled (gate not initialized?)", id)
	}

	rs, err := prepared.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	raw, ok := rs[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, fmt.Errorf("policy %s: unexpected deny result type %T", id, rs[0].Expressions[0].Value)
	}

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		msgs = append(msgs, fmt.Sprintf("%v", v))
	}
	return msgs, nil
}

// planAsInput converts the plan through JSON so the Rego input uses the
// same field names as the exported report.
func planAsInput(plan models.DeployPlan) (any, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan for policy input: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to decode plan for policy input: %w", err)
	}
	return input, nil
}
