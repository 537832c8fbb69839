package main

import (
	"fmt"
	"os"

	"github.com/gh-nvat/gitops-deployctl/src/internal/runner"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command, parse args from CLI
func newRootCmd() *cobra.Command {
	opts := &runner.Options{}

	cmd := &cobra.Command{
		Use:   "gitops-deployctl",
		Short: "Branch-driven deploy decision and rollout tool for Kubernetes services",
		Long: `gitops-deployctl derives the deploy identity of a CI checkout (repo, branch,
namespace, image), classifies the target environment, plans the layered runtime
config, checks branch protection and the actor's collaborator role, and - in
deploy mode - builds and pushes the image, rolls the deployment, and notifies.`,
		Version: fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	// Run mode
	cmd.Flags().StringVar(&opts.RunMode, "run-mode", "plan", "Run mode: plan or deploy")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Debug mode")

	// Identity flags (all optional, every one falls back to CI environment
	// variables or derivation)
	cmd.Flags().StringVar(&opts.GitURL, "git-url", "", "Git remote URL (default: $GIT_URL)")
	cmd.Flags().StringVar(&opts.Branch, "branch", "", "Branch to deploy, wins over CI-provided refs")
	cmd.Flags().StringVar(&opts.CommitSHA, "commit", "", "Commit SHA used for the image tag (default: $GIT_COMMIT)")
	cmd.Flags().StringVar(&opts.CommitMessage, "commit-message", "", "Commit message for notifications (default: $GIT_COMMIT_MESSAGE)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "User the permission decision is made for (default: $DEPLOY_ACTOR or $GITHUB_ACTOR)")

	// Identity overrides
	cmd.Flags().StringVar(&opts.Namespace, "namespace", "", "Override the target namespace (default: repo name)")
	cmd.Flags().StringVar(&opts.DeploymentName, "deployment", "", "Override the deployment name (default: <repo>-<branch>)")
	cmd.Flags().StringVar(&opts.AppName, "app-name", "", "Override the app name used for the image (default: <repo>-<branch>)")
	cmd.Flags().StringVar(&opts.Registry, "registry", "", "Override the container registry")

	// Notification flags
	cmd.Flags().StringVar(&opts.NotifyChatID, "notify-chat-id", "", "Override the Telegram chat id")
	cmd.Flags().StringVar(&opts.NotifyThreadID, "notify-thread-id", "", "Override the Telegram message thread id")
	cmd.Flags().BoolVar(&opts.NotifySilent, "notify-silent", false, "Deliver notifications without sound")
	cmd.Flags().BoolVar(&opts.NotifyStrict, "notify-strict", false, "Fail the run when a notification cannot be delivered")

	// Deploy mode flags
	cmd.Flags().StringVar(&opts.Container, "container", "", "Container to update (default: app name) [deploy mode]")
	cmd.Flags().StringVar(&opts.DockerfilePath, "dockerfile", "Dockerfile", "Path to the Dockerfile [deploy mode]")
	cmd.Flags().StringVar(&opts.BuildContext, "build-context", ".", "Docker build context [deploy mode]")

	// Plan mode flags
	cmd.Flags().BoolVar(&opts.Enforce, "enforce", false, "Exit non-zero when the plan is denied [plan mode]")

	// Common flags
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to deployctl.yaml (default: ./deployctl.yaml if present)")
	cmd.Flags().StringVar(&opts.PoliciesPath, "policies-path", "", "Path to deploy-gate policies directory (contains gate-config.yaml)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "./output", "Output directory for exported files")
	cmd.Flags().BoolVar(&opts.EnableExportReport, "enable-export-report", false, "Enable export report (json file to output dir)")

	return cmd
}
