package configlayer

import (
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/identity"
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

const (
	// SHARED_LAYER_NAME is the fixed name of the lowest-precedence layer
	// read by every service.
	SHARED_LAYER_NAME = "general"
)

// Plan derives the ordered config layers for a branch. Layers are declared
// in increasing precedence; Merge applies them in that order with
// last-write-wins semantics:
//
//  1. ("general", all keys)            — shared layer, lowest precedence
//  2. (base, all keys)                 — branch base (before the first "/")
//  3. (sanitized branch, all keys)     — only when a "/suffix" is present
func Plan(branchName string) models.ConfigLayerPlan {
	base, suffix := splitBranch(branchName)

	plan := models.ConfigLayerPlan{
		{SourceName: SHARED_LAYER_NAME, Kind: models.LAYER_KIND_CONFIGMAP, Scope: models.LAYER_SCOPE_ALL_KEYS},
		{SourceName: identity.Sanitize(base), Kind: models.LAYER_KIND_CONFIGMAP, Scope: models.LAYER_SCOPE_ALL_KEYS},
	}
	if suffix != "" {
		plan = append(plan, models.ConfigLayer{
			SourceName: identity.Sanitize(branchName),
			Kind:       models.LAYER_KIND_CONFIGMAP,
			Scope:      models.LAYER_SCOPE_ALL_KEYS,
		})
	}
	return plan
}

// PlanWithSecrets appends a secret-backed layer on top of all ConfigMap
// layers, named after the full sanitized branch, with the same
// last-write-wins rule.
func PlanWithSecrets(branchName string) models.ConfigLayerPlan {
	plan := Plan(branchName)
	return append(plan, models.ConfigLayer{
		SourceName: identity.Sanitize(branchName),
		Kind:       models.LAYER_KIND_SECRET,
		Scope:      models.LAYER_SCOPE_ALL_KEYS,
	})
}

// splitBranch splits on the first "/" only; "beta/api/v2" has base "beta"
// and suffix "api/v2".
func splitBranch(branchName string) (base, suffix string) {
	idx := strings.Index(branchName, "/")
	if idx < 0 {
		return branchName, ""
	}
	return branchName[:idx], branchName[idx+1:]
}

// Merge folds layer values in plan order: later layers clobber earlier
// ones for the same key name. The input slice must be in the same order as
// the plan that produced it.
func Merge(layerValues []map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, values := range layerValues {
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged
}
