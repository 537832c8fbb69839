package protection

import (
	"context"
	"fmt"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

// Decision table:
//
//	NONE     -> allow, no role lookup performed
//	MAINTAIN -> allow iff role is admin or maintain
//	ADMIN    -> allow iff role is admin
//
// A failed role lookup allows with REASON_PERMISSION_CHECK_FAILED: this is
// deliberately fail-open. Blocking every deploy on an API hiccup is worse
// than an occasional bypass in CI, and the reason code keeps the outcome
// distinguishable from an explicit grant.
func Decide(
	ctx context.Context,
	roles RoleSource,
	owner, repo, branch, username string,
	prot models.ProtectionResult,
) models.PermissionDecision {
	if prot.Level == models.PROTECTION_NONE {
		return models.PermissionDecision{
			CanDeploy: true,
			Reason:    allowReasonFor(prot.Reason),
			ActorRole: models.ROLE_UNKNOWN,
		}
	}

	role, err := roles.CollaboratorRole(ctx, owner, repo, username)
	if err != nil {
		logger.WithField("username", username).WithField("error", err).
			Warn("Collaborator role lookup failed, failing open")
		return models.PermissionDecision{
			CanDeploy: true,
			Reason:    models.REASON_PERMISSION_CHECK_FAILED,
			ActorRole: models.ROLE_UNKNOWN,
		}
	}

	if roleQualifies(prot.Level, role) {
		return models.PermissionDecision{
			CanDeploy: true,
			Reason:    models.REASON_ROLE_QUALIFIES,
			ActorRole: role,
		}
	}

	return models.PermissionDecision{
		CanDeploy: false,
		Reason:    models.REASON_ROLE_INSUFFICIENT,
		ActorRole: role,
		Explanation: fmt.Sprintf(
			"deploying branch %q requires the %s role, but user %q has the %s role",
			branch, requiredRole(prot.Level), username, role,
		),
	}
}

func allowReasonFor(reason models.ProtectionReason) models.DecisionReason {
	switch reason {
	case models.PROTECTION_REASON_NO_LISTS:
		return models.REASON_NO_PROTECTION_CONFIGURED
	case models.PROTECTION_REASON_LOOKUP_ERROR:
		return models.REASON_PROTECTION_CHECK_FAILED
	default:
		return models.REASON_NO_PROTECTION
	}
}

func roleQualifies(level models.ProtectionLevel, role models.Role) bool {
	switch level {
	case models.PROTECTION_ADMIN:
		return role == models.ROLE_ADMIN
	case models.PROTECTION_MAINTAIN:
		return role == models.ROLE_ADMIN || role == models.ROLE_MAINTAIN
	default:
		return true
	}
}

func requiredRole(level models.ProtectionLevel) models.Role {
	if level == models.PROTECTION_ADMIN {
		return models.ROLE_ADMIN
	}
	return models.ROLE_MAINTAIN
}
