package protection

import (
	"context"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "protection",
})

// MetadataSource yields the configured protection lists for a repository.
// The source of truth is external (repository-level metadata); this package
// only interprets it.
type MetadataSource interface {
	ProtectionLists(ctx context.Context, owner, repo string) (models.ProtectionLists, error)
}

// RoleSource yields the collaborator role of a user on a repository.
type RoleSource interface {
	CollaboratorRole(ctx context.Context, owner, repo, username string) (models.Role, error)
}

// Resolve determines the protection level of a branch from the metadata
// source. A branch listed under both lists resolves to ADMIN (the more
// restrictive level always wins). A failure to reach the source fails open
// to NONE, tagged with a distinct reason so the outcome stays auditable.
func Resolve(
	ctx context.Context,
	src MetadataSource,
	owner, repo, branch string,
) models.ProtectionResult {
	lists, err := src.ProtectionLists(ctx, owner, repo)
	if err != nil {
		logger.WithField("owner", owner).WithField("repo", repo).WithField("error", err).
			Warn("Failed to fetch protection lists, failing open to NONE")
		return models.ProtectionResult{
			Level:  models.PROTECTION_NONE,
			Reason: models.PROTECTION_REASON_LOOKUP_ERROR,
		}
	}

	if contains(lists.Admin, branch) {
		return models.ProtectionResult{
			Level:  models.PROTECTION_ADMIN,
			Reason: models.PROTECTION_REASON_ADMIN_LISTED,
		}
	}
	if contains(lists.Maintain, branch) {
		return models.ProtectionResult{
			Level:  models.PROTECTION_MAINTAIN,
			Reason: models.PROTECTION_REASON_MAINTAIN_LISTED,
		}
	}

	// Both behave as NONE, but "lists exist and the branch is absent" is
	// surprising while "nothing configured" is the normal case; keep them
	// distinguishable for diagnostics.
	if !lists.Configured() {
		return models.ProtectionResult{
			Level:  models.PROTECTION_NONE,
			Reason: models.PROTECTION_REASON_NO_LISTS,
		}
	}
	return models.ProtectionResult{
		Level:  models.PROTECTION_NONE,
		Reason: models.PROTECTION_REASON_NOT_LISTED,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
