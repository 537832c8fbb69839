package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/config"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/configlayer"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/docker"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/kubectl"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/notify"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/policy"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/protection"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/template"
)

// RunnerDeploy executes the deploy: on an allowed plan it builds and
// pushes the image, rolls the deployment and notifies; on a denied plan
// it sends the denial notification and fails the run.
type RunnerDeploy struct {
	RunnerBase
}

// make RunnerDeploy implement RunnerInterface
var _ RunnerInterface = (*RunnerDeploy)(nil)

func NewRunnerDeploy(
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
) (*RunnerDeploy, error) {
	baseRunner, err := NewRunnerBase(ctx, options, cfg, metadata, roles, cluster, images, gate, sender, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerDeploy{
		RunnerBase: *baseRunner,
	}
	return runner, nil
}

func (r *RunnerDeploy) Initialize() error {
	if err := r.RunnerBase.Initialize(); err != nil {
		return err
	}
	if r.Cluster == nil || r.Images == nil {
		return fmt.Errorf("cluster store and image builder are required in deploy mode")
	}
	return nil
}

func (r *RunnerDeploy) Process() error {
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

	if !plan.Decision.CanDeploy || gateResult.Blocked() {
		return r.processDenied(plan, gateResult)
	}

	// Resolve the layered runtime config up front so a broken layer fails
	// the run before any image is pushed.
	merged, err := configlayer.Apply(r.Context, r.Cluster, plan.Identity.Namespace, plan.ConfigPlan)
	if err != nil {
		return fmt.Errorf("failed to resolve config layers: %w", err)
	}
	logger.WithField("keys", len(merged)).Info("Process: resolved runtime config")

	reportData := r.buildReportData(plan, gateResult, false)
	if err := r.deploy(plan); err != nil {
		if notifyErr := r.notifyFailure(&reportData); notifyErr != nil {
			logger.WithField("error", notifyErr).Error("Failed to notify about the failed deploy")
		}
		if outErr := r.Output(&reportData); outErr != nil {
			logger.WithField("error", outErr).Error("Failed to export report for the failed deploy")
		}
		return err
	}

	reportData.Deployed = true
	if err := r.notifySuccess(&reportData); err != nil {
		return err
	}
	if err := r.Output(&reportData); err != nil {
		return err
	}

	logger.WithField("image", plan.Identity.ImageRef()).Info("Process: done.")
	return nil
}

// processDenied sends the mandatory denial notification, exports the
// report, and fails the run.
func (r *RunnerDeploy) processDenied(plan *models.DeployPlan, gateResult *policy.GateResult) error {
	summary := denialSummary(plan, gateResult)
	logger.WithField("reason", plan.Decision.Reason).Warn("Process: deploy denied")

	reportData := r.buildReportData(plan, gateResult, false)
	if err := r.notifyDenied(&reportData); err != nil {
		return err
	}
	if err := r.Output(&reportData); err != nil {
		return err
	}
	return fmt.Errorf("deploy denied: %s", summary)
}

func (r *RunnerDeploy) deploy(plan *models.DeployPlan) error {
	imageRef := plan.Identity.ImageRef()

	if err := r.Images.Build(r.Context, imageRef, r.Options.DockerfilePath, r.Options.BuildContext); err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	if err := r.Images.Push(r.Context, imageRef); err != nil {
		return fmt.Errorf("failed to push image: %w", err)
	}

	container := r.Options.Container
	if container == "" {
		container = plan.Identity.AppName
	}
	if err := r.Cluster.SetImage(r.Context, plan.Identity.Namespace, plan.Identity.DeploymentName, container, imageRef); err != nil {
		return fmt.Errorf("failed to roll deployment: %w", err)
	}
	return nil
}

func denialSummary(plan *models.DeployPlan, gateResult *policy.GateResult) string {
	var parts []string
	if !plan.Decision.CanDeploy {
		if plan.Decision.Explanation != "" {
			parts = append(parts, plan.Decision.Explanation)
		} else {
			parts = append(parts, string(plan.Decision.Reason))
		}
	}
	for id, msgs := range gateResult.Blocks {
		parts = append(parts, fmt.Sprintf("policy %s: %s", id, strings.Join(msgs, "; ")))
	}
	return strings.Join(parts, "; ")
}
