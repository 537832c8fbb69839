package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
registry:
  beta: registry.beta.example.com
  prod: registry.example.com
  fallback: registry.fallback.example.com
protection:
  adminVariable: MY_ADMIN_LIST
telegram:
  botToken: global-token
  chatId: "-100123"
  staging:
    chatId: "-100456"
policiesPath: ./policies
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	table := cfg.Registry.Table()
	if table[models.ENV_CLASS_BETA] != "registry.beta.example.com" {
		t.Errorf("beta registry = %q", table[models.ENV_CLASS_BETA])
	}
	if _, ok := table[models.ENV_CLASS_STAGING]; ok {
		t.Error("staging registry should be absent from table")
	}
	if cfg.Protection.AdminVariable != "MY_ADMIN_LIST" {
		t.Errorf("admin variable = %q", cfg.Protection.AdminVariable)
	}
	if cfg.Protection.MaintainVariable != DEFAULT_MAINTAIN_VARIABLE {
		t.Errorf("maintain variable default not applied, got %q", cfg.Protection.MaintainVariable)
	}
	if cfg.Telegram.ForClass(models.ENV_CLASS_STAGING).ChatID != "-100456" {
		t.Errorf("staging chatId = %q", cfg.Telegram.ForClass(models.ENV_CLASS_STAGING).ChatID)
	}
	if cfg.Telegram.ForClass(models.ENV_CLASS_PROD).ChatID != "" {
		t.Error("prod class should have no dedicated chatId")
	}
	if cfg.Telegram.ChatID != "-100123" {
		t.Errorf("global chatId = %q", cfg.Telegram.ChatID)
	}
	if cfg.PoliciesPath != "./policies" {
		t.Errorf("policiesPath = %q", cfg.PoliciesPath)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with a missing explicit path should error")
	}
}

func TestLoadEnvironmentOverlay(t *testing.T) {
	path := writeConfigFile(t, `
registry:
  prod: registry.example.com
`)
	t.Setenv("DEPLOYCTL_REGISTRY_PROD", "registry.override.example.com")
	t.Setenv("DEPLOYCTL_TELEGRAM_BETA_CHAT_ID", "-100999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Registry.Prod != "registry.override.example.com" {
		t.Errorf("env overlay not applied, prod registry = %q", cfg.Registry.Prod)
	}
	if cfg.Telegram.Beta.ChatID != "-100999" {
		t.Errorf("env overlay not applied, beta chatId = %q", cfg.Telegram.Beta.ChatID)
	}
}
