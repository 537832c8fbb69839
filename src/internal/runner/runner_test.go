package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/config"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/policy"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/protection"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/template"
)

type countingMetadata struct {
	inner protection.MetadataSource
	calls int
}

func (c *countingMetadata) ProtectionLists(ctx context.Context, owner, repo string) (models.ProtectionLists, error) {
	c.calls++
	return c.inner.ProtectionLists(ctx, owner, repo)
}

type staticRoles struct {
	role  models.Role
	calls int
}

func (s *staticRoles) CollaboratorRole(_ context.Context, _, _, _ string) (models.Role, error) {
	s.calls++
	return s.role, nil
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) Send(_ context.Context, _ models.NotificationTarget, text string, _ bool) error {
	r.sent = append(r.sent, text)
	return nil
}

func newTestRunner(t *testing.T, options *Options, cfg *config.Config, metadata protection.MetadataSource, roles protection.RoleSource) (*RunnerBase, *recordingSender) {
	t.Helper()
	renderer, err := template.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	sender := &recordingSender{}
	runner, err := NewRunnerBase(
		context.Background(), options, cfg,
		metadata, roles,
		nil, nil,
		policy.NewGate(""),
		sender, renderer,
	)
	if err != nil {
		t.Fatalf("NewRunnerBase() error = %v", err)
	}
	return runner, sender
}

func TestComputePlanResolvesEverything(t *testing.T) {
	cfg := &config.Config{}
	cfg.Registry.Prod = "registry.example.com"
	cfg.Telegram.ChatID = "-100123"
	cfg.Telegram.BotToken = "global-token"
	cfg.Telegram.Staging.ChatID = "-100456"

	options := &Options{
		RunMode:   RunModePlan,
		GitURL:    "git@github.com:acme/widget.git",
		EnvBranch: "origin/main",
		CommitSHA: "0123456789abcdef",
		Actor:     "octocat",
	}
	metadata := &protection.StaticSource{
		Admin:           []string{"main"},
		AdminConfigured: true,
	}
	roles := &staticRoles{role: models.ROLE_ADMIN}
	runner, _ := newTestRunner(t, options, cfg, metadata, roles)

	plan, err := runner.ComputePlan()
	if err != nil {
		t.Fatalf("ComputePlan() error = %v", err)
	}

	if plan.Identity.RepoName != "widget" || plan.Identity.BranchName != "main" {
		t.Errorf("identity = %q/%q", plan.Identity.RepoName, plan.Identity.BranchName)
	}
	if plan.Environment != models.ENV_CLASS_PROD {
		t.Errorf("environment = %v, want PROD", plan.Environment)
	}
	if plan.Identity.Registry != "registry.example.com" {
		t.Errorf("registry = %q", plan.Identity.Registry)
	}
	if got := plan.Identity.ImageRef(); got != "registry.example.com/widget-main:0123456" {
		t.Errorf("image ref = %q", got)
	}
	if plan.Protection.Level != models.PROTECTION_ADMIN {
		t.Errorf("protection level = %v, want ADMIN", plan.Protection.Level)
	}
	if !plan.Decision.CanDeploy || plan.Decision.Reason != models.REASON_ROLE_QUALIFIES {
		t.Errorf("decision = %+v, want allow via role", plan.Decision)
	}
	if len(plan.ConfigPlan) != 3 {
		t.Errorf("config plan has %d layers, want 3", len(plan.ConfigPlan))
	}
	// Global fallback credentials apply since PROD has no dedicated target.
	if plan.Target.ChatID != "-100123" || plan.Target.BotToken != "global-token" {
		t.Errorf("notification target = %+v", plan.Target)
	}
}

func TestComputePlanIsMemoized(t *testing.T) {
	metadata := &countingMetadata{inner: &protection.StaticSource{
		Maintain:           []string{"release"},
		MaintainConfigured: true,
	}}
	roles := &staticRoles{role: models.ROLE_MAINTAIN}
	options := &Options{
		RunMode: RunModePlan,
		GitURL:  "https://github.com/acme/widget",
		Branch:  "release",
		Actor:   "octocat",
	}
	runner, _ := newTestRunner(t, options, &config.Config{}, metadata, roles)

	first, err := runner.ComputePlan()
	if err != nil {
		t.Fatalf("ComputePlan() error = %v", err)
	}
	second, err := runner.ComputePlan()
	if err != nil {
		t.Fatalf("ComputePlan() second call error = %v", err)
	}
	if first != second {
		t.Error("ComputePlan() returned different plan instances")
	}
	if metadata.calls != 1 {
		t.Errorf("metadata source called %d times, want 1", metadata.calls)
	}
	if roles.calls != 1 {
		t.Errorf("role source called %d times, want 1", roles.calls)
	}
}

func TestPlanRunnerEnforceFailsOnDeny(t *testing.T) {
	metadata := &protection.StaticSource{
		Admin:           []string{"main"},
		AdminConfigured: true,
	}
	roles := &staticRoles{role: models.ROLE_WRITE}
	options := &Options{
		RunMode: RunModePlan,
		GitURL:  "git@github.com:acme/widget.git",
		Branch:  "main",
		Actor:   "contributor",
	}

	t.Run("without enforce", func(t *testing.T) {
		base, _ := newTestRunner(t, options, &config.Config{}, metadata, roles)
		planRunner := &RunnerPlan{RunnerBase: *base}
		if err := planRunner.Process(); err != nil {
			t.Errorf("Process() error = %v, want nil without --enforce", err)
		}
	})

	t.Run("with enforce", func(t *testing.T) {
		enforced := *options
		enforced.Enforce = true
		base, _ := newTestRunner(t, &enforced, &config.Config{}, metadata, roles)
		planRunner := &RunnerPlan{RunnerBase: *base}
		err := planRunner.Process()
		if err == nil {
			t.Fatal("Process() error = nil, want denial error with --enforce")
		}
		if !strings.Contains(err.Error(), "contributor") {
			t.Errorf("denial error %q does not name the actor", err)
		}
	})
}

func TestDeployRunnerDeniedNotifiesAndFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "-1001"

	metadata := &protection.StaticSource{
		Admin:           []string{"main"},
		AdminConfigured: true,
	}
	roles := &staticRoles{role: models.ROLE_WRITE}
	options := &Options{
		RunMode: RunModeDeploy,
		GitURL:  "git@github.com:acme/widget.git",
		Branch:  "main",
		Actor:   "contributor",
	}
	base, sender := newTestRunner(t, options, cfg, metadata, roles)
	deployRunner := &RunnerDeploy{RunnerBase: *base}

	err := deployRunner.Process()
	if err == nil {
		t.Fatal("Process() error = nil, want denial error")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d notifications, want exactly 1", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "BLOCKED") {
		t.Errorf("denial notification %q does not mention the block", sender.sent[0])
	}
}
