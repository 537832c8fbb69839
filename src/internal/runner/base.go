package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/config"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/configlayer"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/docker"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/environment"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/identity"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/kubectl"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/notify"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/policy"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/protection"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/template"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "runner",
})

type RunnerBase struct {
	Context context.Context
	Options *Options

	RunMode string

	Config   *config.Config
	Metadata protection.MetadataSource
	Roles    protection.RoleSource
	Cluster  kubectl.Store
	Images   docker.ImageBuilder
	Gate     *policy.Gate
	Sender   notify.Sender
	Renderer *template.Renderer

	planComputed bool
	plan         *models.DeployPlan
	planErr      error
}

// make RunnerBase implement RunnerInterface
var _ RunnerInterface = (*RunnerBase)(nil)

func NewRunnerBase(
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
) (*RunnerBase, error) {
	runner := &RunnerBase{
		Context:  ctx,
		Options:  options,
		RunMode:  options.RunMode,
		Config:   cfg,
		Metadata: metadata,
		Roles:    roles,
		Cluster:  cluster,
		Images:   images,
		Gate:     gate,
		Sender:   sender,
		Renderer: renderer,
	}
	return runner, nil
}

func (r *RunnerBase) Initialize() error {
	logger.Info("Initializing runner: starting...")

	// if any is nil, return error
	if r.Config == nil || r.Metadata == nil || r.Roles == nil || r.Gate == nil ||
		r.Sender == nil || r.Renderer == nil {
		return fmt.Errorf("config, metadata, roles, gate, sender, and renderer are required")
	}

	logger.Info("Initialize runner: Gate: Loading and validating policy configuration")
	if err := r.Gate.LoadAndValidate(r.Context); err != nil {
		return fmt.Errorf("failed to load policy config: %w", err)
	}

	logger.Info("Initialize runner: done.")
	return nil
}

// ComputePlan derives the complete deploy plan from the run inputs. The
// external lookups (protection lists, collaborator role) happen at most
// once per run; subsequent calls return the memoized plan.
func (r *RunnerBase) ComputePlan() (*models.DeployPlan, error) {
	if !r.planComputed {
		r.plan, r.planErr = r.computePlan()
		r.planComputed = true
	}
	return r.plan, r.planErr
}

func (r *RunnerBase) computePlan() (*models.DeployPlan, error) {
	logger.Info("ComputePlan: starting...")

	ident := identity.Resolve(identity.Inputs{
		GitURL:         r.Options.GitURL,
		BranchOverride: r.Options.Branch,
		EnvBranch:      r.Options.EnvBranch,
		EnvBranchAlt:   r.Options.EnvBranchAlt,
		CommitSHA:      r.Options.CommitSHA,
		CommitMessage:  r.Options.CommitMessage,
		Overrides: models.IdentityOverrides{
			Namespace:      r.Options.Namespace,
			DeploymentName: r.Options.DeploymentName,
			AppName:        r.Options.AppName,
			Registry:       r.Options.Registry,
		},
	})

	class := environment.Classify(ident.BranchName)
	if ident.Registry == "" {
		ident.Registry = environment.SelectRegistry(
			class, r.Options.Registry, r.Config.Registry.Table(), r.Config.Registry.Fallback)
	}
	logger.WithField("repo", ident.RepoName).WithField("branch", ident.BranchName).
		WithField("class", class).WithField("registry", ident.Registry).
		Info("ComputePlan: resolved identity")

	configPlan := configlayer.PlanWithSecrets(ident.BranchName)

	prot := protection.Resolve(r.Context, r.Metadata, ident.RepoOwner, ident.RepoName, ident.BranchName)
	logger.WithField("level", prot.Level).WithField("reason", prot.Reason).
		Info("ComputePlan: resolved branch protection")

	decision := protection.Decide(
		r.Context, r.Roles,
		ident.RepoOwner, ident.RepoName, ident.BranchName, r.Options.Actor,
		prot,
	)
	logger.WithField("canDeploy", decision.CanDeploy).WithField("reason", decision.Reason).
		WithField("role", decision.ActorRole).Info("ComputePlan: permission decision")

	target := r.resolveNotificationTarget(class)

	logger.Info("ComputePlan: done.")
	return &models.DeployPlan{
		Identity:    ident,
		Environment: class,
		ConfigPlan:  configPlan,
		Protection:  prot,
		Decision:    decision,
		Target:      target,
	}, nil
}

func (r *RunnerBase) resolveNotificationTarget(class models.EnvironmentClass) models.NotificationTarget {
	classTarget := r.Config.Telegram.ForClass(class)
	return notify.Route(notify.RouterInputs{
		BotToken: notify.Chain{
			Override:   r.Options.NotifyBotToken,
			ClassValue: classTarget.BotToken,
			Fallback:   r.Config.Telegram.BotToken,
		},
		ChatID: notify.Chain{
			Override:   r.Options.NotifyChatID,
			ClassValue: classTarget.ChatID,
			Fallback:   r.Config.Telegram.ChatID,
		},
		ThreadID: notify.Chain{
			Override:   r.Options.NotifyThreadID,
			ClassValue: classTarget.ThreadID,
			Fallback:   r.Config.Telegram.ThreadID,
		},
	})
}

func (r *RunnerBase) Process() error {
	return fmt.Errorf("RunnerBase has no process routine, use a mode-specific runner")
}

func (r *RunnerBase) buildReportData(plan *models.DeployPlan, gateResult *policy.GateResult, deployed bool) models.ReportData {
	data := models.ReportData{
		Tool:      template.ToolSignature,
		Timestamp: time.Now(),
		RunMode:   r.RunMode,
		Actor:     r.Options.Actor,
		Plan:      *plan,
		Deployed:  deployed,
	}
	if gateResult != nil {
		data.PolicyWarnings = gateResult.Warnings
		data.PolicyBlocks = gateResult.Blocks
	}
	return data
}

// notify renders and delivers one notification. Delivery failures are
// logged and swallowed unless --notify-strict is set; a lost message must
// not take down an otherwise valid run.
func (r *RunnerBase) notify(render func(*models.ReportData) (string, error), data *models.ReportData) error {
	text, err := render(data)
	if err != nil {
		return err
	}
	err = r.Sender.Send(r.Context, data.Plan.Target, text, r.Options.NotifySilent)
	if err != nil {
		if r.Options.NotifyStrict {
			return fmt.Errorf("failed to deliver notification: %w", err)
		}
		logger.WithField("error", err).Warn("Failed to deliver notification, continuing")
	}
	return nil
}

func (r *RunnerBase) notifySuccess(data *models.ReportData) error {
	return r.notify(r.Renderer.RenderSuccess, data)
}

func (r *RunnerBase) notifyDenied(data *models.ReportData) error {
	return r.notify(r.Renderer.RenderDenied, data)
}

func (r *RunnerBase) notifyFailure(data *models.ReportData) error {
	return r.notify(r.Renderer.RenderFailure, data)
}

func (r *RunnerBase) Output(data *models.ReportData) error {
	logger.Info("Output: starting...")
	if err := r.outputReportJson(data); err != nil {
		return err
	}
	logger.Info("Output: done.")
	return nil
}

// Exporting report json file to output directory if enabled
func (r *RunnerBase) outputReportJson(data *models.ReportData) error {
	if !r.Options.EnableExportReport {
		logger.Info("OutputJson: option was disabled")
		return nil
	}
	logger.Info("OutputJson: starting...")

	if err := os.MkdirAll(r.Options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultsJson, err := json.Marshal(data)
	if err != nil {
		return err
	}
	filePath := filepath.Join(r.Options.OutputDir, "report.json")
	if err := os.WriteFile(filePath, resultsJson, 0644); err != nil {
		logger.WithField("filePath", filePath).WithField("error", err).Error("Failed to write report data to file")
		return err
	}
	logger.WithField("filePath", filePath).Info("Written report data to file")
	return nil
}
