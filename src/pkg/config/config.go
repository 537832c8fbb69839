package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "config",
})

const (
	DEFAULT_CONFIG_FILENAME = "deployctl.yaml"
	ENV_PREFIX              = "DEPLOYCTL"

	DEFAULT_ADMIN_VARIABLE    = "DEPLOY_ADMIN_BRANCHES"
	DEFAULT_MAINTAIN_VARIABLE = "DEPLOY_MAINTAIN_BRANCHES"
)

// RegistryConfig maps environment classes to container registries.
type RegistryConfig struct {
	Beta     string `yaml:"beta" envconfig:"BETA"`
	Staging  string `yaml:"staging" envconfig:"STAGING"`
	Prod     string `yaml:"prod" envconfig:"PROD"`
	Fallback string `yaml:"fallback" envconfig:"FALLBACK"`
}

// Table returns the per-class registry lookup table, omitting empty entries.
func (r RegistryConfig) Table() map[models.EnvironmentClass]string {
	table := map[models.EnvironmentClass]string{}
	if r.Beta != "" {
		table[models.ENV_CLASS_BETA] = r.Beta
	}
	if r.Staging != "" {
		table[models.ENV_CLASS_STAGING] = r.Staging
	}
	if r.Prod != "" {
		table[models.ENV_CLASS_PROD] = r.Prod
	}
	return table
}

// ProtectionConfig names the repository Actions variables holding the
// protected-branch lists.
type ProtectionConfig struct {
	AdminVariable    string `yaml:"adminVariable" envconfig:"ADMIN_VARIABLE"`
	MaintainVariable string `yaml:"maintainVariable" envconfig:"MAINTAIN_VARIABLE"`
}

// TelegramTarget is one set of Telegram delivery credentials.
type TelegramTarget struct {
	BotToken string `yaml:"botToken" envconfig:"BOT_TOKEN"`
	ChatID   string `yaml:"chatId" envconfig:"CHAT_ID"`
	ThreadID string `yaml:"threadId" envconfig:"THREAD_ID"`
}

// TelegramConfig holds the global fallback credentials plus optional
// per-class credentials. Each field resolves independently downstream.
type TelegramConfig struct {
	TelegramTarget `yaml:",inline"`

	Beta    TelegramTarget `yaml:"beta" envconfig:"BETA"`
	Staging TelegramTarget `yaml:"staging" envconfig:"STAGING"`
	Prod    TelegramTarget `yaml:"prod" envconfig:"PROD"`
}

// ForClass returns the class-specific credentials, zero-valued when the
// class has none configured.
func (t TelegramConfig) ForClass(class models.EnvironmentClass) TelegramTarget {
	switch class {
	case models.ENV_CLASS_BETA:
		return t.Beta
	case models.ENV_CLASS_STAGING:
		return t.Staging
	case models.ENV_CLASS_PROD:
		return t.Prod
	}
	return TelegramTarget{}
}

// Config is the tool configuration: file values overlaid by
// DEPLOYCTL_-prefixed environment variables.
type Config struct {
	Registry   RegistryConfig   `yaml:"registry"`
	Protection ProtectionConfig `yaml:"protection"`
	Telegram   TelegramConfig   `yaml:"telegram" envconfig:"TELEGRAM"`

	// PoliciesPath points at the deploy-gate policy directory; empty
	// disables the gate.
	PoliciesPath string `yaml:"policiesPath" envconfig:"POLICIES_PATH"`
}

// Load reads the config file (optional when path is empty and the default
// file does not exist), then applies the environment overlay and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	optional := path == ""
	if optional {
		path = DEFAULT_CONFIG_FILENAME
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			logger.WithField("path", path).Debug("No config file found, using environment only")
		} else {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	if err := envconfig.Process(ENV_PREFIX, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overlay: %w", err)
	}

	if cfg.Protection.AdminVariable == "" {
		cfg.Protection.AdminVariable = DEFAULT_ADMIN_VARIABLE
	}
	if cfg.Protection.MaintainVariable == "" {
		cfg.Protection.MaintainVariable = DEFAULT_MAINTAIN_VARIABLE
	}

	return cfg, nil
}
