package models

import "time"

// DeployPlan is the complete set of decisions for one run: who we are,
// where we deploy, which config layers apply, and whether we may proceed.
type DeployPlan struct {
	Identity    ProjectIdentity    `json:"identity"`
	Environment EnvironmentClass   `json:"environment"`
	ConfigPlan  ConfigLayerPlan    `json:"configPlan"`
	Protection  ProtectionResult   `json:"protection"`
	Decision    PermissionDecision `json:"decision"`

	// Target omits the bot token when serialized.
	Target NotificationTarget `json:"notificationTarget"`
}

// ReportData is the exportable record of a run.
type ReportData struct {
	Tool      string    `json:"tool"`
	Timestamp time.Time `json:"timestamp"`
	RunMode   string    `json:"runMode"`
	Actor     string    `json:"actor,omitempty"`

	Plan DeployPlan `json:"plan"`

	// Deployed is true only when the rollout was actually triggered.
	Deployed bool `json:"deployed"`

	// PolicyWarnings and PolicyBlocks hold messages from the optional
	// Rego deploy gates, keyed by policy id.
	PolicyWarnings map[string][]string `json:"policyWarnings,omitempty"`
	PolicyBlocks   map[string][]string `json:"policyBlocks,omitempty"`
}
