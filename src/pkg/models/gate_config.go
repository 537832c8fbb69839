package models

// GateConfig is the deploy-gate policy configuration
// - Policies: id -> GatePolicy
type GateConfig struct {
	Policies map[string]GatePolicy `yaml:"policies"`
}

// GatePolicy is a single Rego deploy-gate policy.
type GatePolicy struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Type         string `yaml:"type"` // "rego" only for now
	FilePath     string `yaml:"filePath"`
	ExternalLink string `yaml:"externalLink,omitempty"` // Optional link to policy documentation

	// Level controls what a failing policy does to the run:
	// "block" fails the deploy, "warn" only reports, "off" is skipped.
	Level string `yaml:"level"`
}
