package runner

const (
	RunModePlan   = "plan"
	RunModeDeploy = "deploy"
)

type Options struct {
	// Run mode
	RunMode string // "plan" or "deploy"
	Debug   bool

	// Identity inputs
	GitURL        string
	Branch        string // explicit branch, wins over the env-derived ones
	EnvBranch     string // CI-provided ref, may carry an "origin/" prefix
	EnvBranchAlt  string // secondary CI-provided branch name
	CommitSHA     string
	CommitMessage string
	Actor         string // CI user the permission decision is made for

	// Per-field identity overrides
	Namespace      string
	DeploymentName string
	AppName        string
	Registry       string

	// Notification overrides (each field resolves independently)
	NotifyBotToken string
	NotifyChatID   string
	NotifyThreadID string
	NotifySilent   bool
	NotifyStrict   bool // escalate notification delivery failures to run failures

	// Deploy mode options
	Container      string // container to update; defaults to the app name
	DockerfilePath string
	BuildContext   string

	// Plan mode options
	Enforce bool // exit non-zero on a denied plan

	// Common options
	ConfigPath         string
	PoliciesPath       string // overrides the configured policies path
	OutputDir          string
	EnableExportReport bool
}
