package runner

import (
	"context"
	"fmt"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/config"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/docker"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/kubectl"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/notify"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/policy"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/protection"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/template"
)

// RunnerPlan computes and reports the deploy plan without side effects.
// It only fails on a denied plan when --enforce is set.
type RunnerPlan struct {
	RunnerBase
}

// make RunnerPlan implement RunnerInterface
var _ RunnerInterface = (*RunnerPlan)(nil)

func NewRunnerPlan(
	ctx context.Context,
	options *Options,
	cfg *config.Config,
	metadata protection.MetadataSource,
	roles protection.RoleSource,
	cluster kubectl.Store,
	images docker.ImageBuilder,
	gate *policy.Gate,
	sender notify.Sender,
	renderer *template.Renderer,
) (*RunnerPlan, error) {
	baseRunner, err := NewRunnerBase(ctx, options, cfg, metadata, roles, cluster, images, gate, sender, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerPlan{
		RunnerBase: *baseRunner,
	}
	return runner, nil
}

func (r *RunnerPlan) Process() error {
	logger.Info("Process: starting...")

	plan, err := r.ComputePlan()
	if err != nil {
		return err
	}

	gateResult, err := r.Gate.Evaluate(r.Context, *plan)
	if err != nil {
		return err
	}
	for id, msgs := range gateResult.Warnings {
		logger.WithField("policyId", id).WithField("msgs", msgs).Warn("Gate policy warnings")
	}

	reportData := r.buildReportData(plan, gateResult, false)
	if err := r.Output(&reportData); err != nil {
		return err
	}

	logger.WithField("canDeploy", plan.Decision.CanDeploy).
		WithField("reason", plan.Decision.Reason).
		WithField("image", plan.Identity.ImageRef()).
		Info("Process: plan computed")

	if !plan.Decision.CanDeploy || gateResult.Blocked() {
		if r.Options.Enforce {
			return fmt.Errorf("deploy would be denied: %s", denialSummary(plan, gateResult))
		}
		logger.Warn("Plan is denied but --enforce is not set, exiting zero")
	}

	logger.Info("Process: done.")
	return nil
}
