package models

// EnvironmentClass is the deployment environment derived from a branch name.
// Classification is total: every branch name maps to exactly one class.
type EnvironmentClass string

const (
	ENV_CLASS_BETA    EnvironmentClass = "beta"
	ENV_CLASS_STAGING EnvironmentClass = "staging"
	ENV_CLASS_PROD    EnvironmentClass = "prod"
)
