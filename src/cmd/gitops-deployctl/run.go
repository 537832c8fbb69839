package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gh-nvat/gitops-deployctl/src/internal/runner"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/config"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/docker"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/github"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/kubectl"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/notify"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/policy"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/protection"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/template"
	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "run",
})

// noRoleSource stands in when no GitHub client could be created. Consulting
// it fails the role lookup, which the decision engine resolves fail-open.
type noRoleSource struct{}

func (noRoleSource) CollaboratorRole(_ context.Context, _, _, _ string) (models.Role, error) {
	return models.ROLE_UNKNOWN, fmt.Errorf("no GitHub client available")
}

// createRunner creates and initializes the appropriate runner
func createRunner(ctx context.Context, opts *runner.Options, cfg *config.Config) (runner.RunnerInterface, error) {
	logger.WithField("runMode", opts.RunMode).Debug("Creating runner..")

	var metadata protection.MetadataSource
	var roles protection.RoleSource
	ghClient, err := github.NewClient()
	if err != nil {
		logger.WithField("error", err).Warn("No GitHub client, protection and role checks will fail open")
		metadata = &protection.StaticSource{}
		roles = noRoleSource{}
	} else {
		metadata = &github.VariableSource{
			Client:      ghClient,
			AdminVar:    cfg.Protection.AdminVariable,
			MaintainVar: cfg.Protection.MaintainVariable,
		}
		roles = ghClient
	}

	policiesPath := opts.PoliciesPath
	if policiesPath == "" {
		policiesPath = cfg.PoliciesPath
	}
	gate := policy.NewGate(policiesPath)

	renderer, err := template.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	sender := notify.NewTelegramSender()
	cluster := kubectl.New()
	images := docker.New()

	switch opts.RunMode {
	case runner.RunModePlan:
		planRunner, err := runner.NewRunnerPlan(
			ctx, opts, cfg, metadata, roles, cluster, images, gate, sender, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to create plan runner: %w", err)
		}
		return planRunner, nil
	case runner.RunModeDeploy:
		deployRunner, err := runner.NewRunnerDeploy(
			ctx, opts, cfg, metadata, roles, cluster, images, gate, sender, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to create deploy runner: %w", err)
		}
		return deployRunner, nil
	default:
		return nil, fmt.Errorf("invalid run mode: %s", opts.RunMode)
	}
}

func initialize(ctx context.Context, opts *runner.Options, cfg *config.Config) (runner.RunnerInterface, error) {
	appRunner, err := createRunner(ctx, opts, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	if err := appRunner.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize runner: %w", err)
	}
	return appRunner, nil
}

func run(ctx context.Context, opts *runner.Options) error {
	logger.WithField("runMode", opts.RunMode).Info("Running..")
	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	fillFromEnvironment(opts)

	if err := validateOptions(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appRunner, err := initialize(ctx, opts, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if err := appRunner.Process(); err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}

	return nil
}

// fillFromEnvironment fills unset identity inputs from the CI environment.
// Flags always win; the resolver itself never reads ambient state.
func fillFromEnvironment(opts *runner.Options) {
	if opts.GitURL == "" {
		opts.GitURL = os.Getenv("GIT_URL")
	}
	opts.EnvBranch = os.Getenv("GIT_BRANCH")
	opts.EnvBranchAlt = os.Getenv("BRANCH_NAME")
	if opts.CommitSHA == "" {
		opts.CommitSHA = os.Getenv("GIT_COMMIT")
	}
	if opts.CommitMessage == "" {
		opts.CommitMessage = os.Getenv("GIT_COMMIT_MESSAGE")
	}
	if opts.Actor == "" {
		opts.Actor = os.Getenv("DEPLOY_ACTOR")
	}
	if opts.Actor == "" {
		opts.Actor = os.Getenv("GITHUB_ACTOR")
	}
	if opts.NotifyBotToken == "" {
		opts.NotifyBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
}

func validateOptions(opts *runner.Options) error {
	if opts.RunMode != runner.RunModePlan && opts.RunMode != runner.RunModeDeploy {
		return fmt.Errorf("run-mode must be 'plan' or 'deploy', got: %s", opts.RunMode)
	}

	if opts.RunMode == runner.RunModeDeploy {
		if opts.DockerfilePath == "" {
			return fmt.Errorf("deploy mode requires --dockerfile")
		}
		if opts.BuildContext == "" {
			return fmt.Errorf("deploy mode requires --build-context")
		}
	}

	if opts.EnableExportReport && opts.OutputDir == "" {
		return fmt.Errorf("--enable-export-report requires --output-dir")
	}

	return nil
}
