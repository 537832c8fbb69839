package environment

import (
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

// classRules are evaluated in order on the lowercased branch name; the
// first rule with a matching substring wins. This is intentionally a
// substring test, not an exact match: "beta-worker", "dev-feature" and
// "hotfix/staging-rollback" all classify by substring. A branch matching
// multiple rules (e.g. containing both "dev" and "prod") takes the first.
var classRules = []struct {
	substrings []string
	class      models.EnvironmentClass
}{
	{substrings: []string{"dev", "beta"}, class: models.ENV_CLASS_BETA},
	{substrings: []string{"staging"}, class: models.ENV_CLASS_STAGING},
	{substrings: []string{"main", "master", "prod", "production"}, class: models.ENV_CLASS_PROD},
}

// Classify maps a branch name to its environment class. Classification is
// total: unmatched branches (including the empty string) resolve to BETA.
func Classify(branchName string) models.EnvironmentClass {
	lowered := strings.ToLower(branchName)
	for _, rule := range classRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lowered, sub) {
				return rule.class
			}
		}
	}
	return models.ENV_CLASS_BETA
}
