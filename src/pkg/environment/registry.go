package environment

import "github.com/gh-nvat/gitops-deployctl/src/pkg/models"

// DEFAULT_REGISTRY is the last-resort registry when neither an override nor
// a per-class table entry nor a configured fallback is present.
const DEFAULT_REGISTRY = "registry.local"

// SelectRegistry resolves the registry URL for an environment class:
// an explicit override wins, else the per-class table entry, else the
// configured fallback, else DEFAULT_REGISTRY. Never returns empty.
func SelectRegistry(
	class models.EnvironmentClass,
	override string,
	table map[models.EnvironmentClass]string,
	fallback string,
) string {
	if override != "" {
		return override
	}
	if url, ok := table[class]; ok && url != "" {
		return url
	}
	if fallback != "" {
		return fallback
	}
	return DEFAULT_REGISTRY
}
