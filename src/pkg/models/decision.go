package models

// ProtectionLevel is the protection attached to a (owner, repo, branch)
// triple. ADMIN is strictly more restrictive than MAINTAIN: a branch listed
// under both resolves to ADMIN.
type ProtectionLevel string

const (
	PROTECTION_NONE     ProtectionLevel = "none"
	PROTECTION_MAINTAIN ProtectionLevel = "maintain"
	PROTECTION_ADMIN    ProtectionLevel = "admin"
)

// ProtectionReason explains how a ProtectionLevel was arrived at. The NONE
// level has three distinguishable causes: the branch is not in any list, no
// lists are configured at all, or the metadata source could not be reached.
type ProtectionReason string

const (
	PROTECTION_REASON_ADMIN_LISTED    ProtectionReason = "BRANCH_IN_ADMIN_LIST"
	PROTECTION_REASON_MAINTAIN_LISTED ProtectionReason = "BRANCH_IN_MAINTAIN_LIST"
	PROTECTION_REASON_NOT_LISTED      ProtectionReason = "BRANCH_NOT_LISTED"
	PROTECTION_REASON_NO_LISTS        ProtectionReason = "NO_LISTS_CONFIGURED"
	PROTECTION_REASON_LOOKUP_ERROR    ProtectionReason = "PROTECTION_LOOKUP_ERROR"
)

// ProtectionResult is the outcome of resolving branch protection.
type ProtectionResult struct {
	Level  ProtectionLevel  `json:"level"`
	Reason ProtectionReason `json:"reason"`
}

// ProtectionLists are the two named branch lists read from repository
// metadata. The Configured flags distinguish "list exists but branch is not
// in it" from "no list configured at all".
type ProtectionLists struct {
	Admin              []string
	Maintain           []string
	AdminConfigured    bool
	MaintainConfigured bool
}

// Configured reports whether any protection list is configured.
func (l ProtectionLists) Configured() bool {
	return l.AdminConfigured || l.MaintainConfigured
}

// Role is a collaborator role on a repository.
type Role string

const (
	ROLE_ADMIN    Role = "admin"
	ROLE_MAINTAIN Role = "maintain"
	ROLE_WRITE    Role = "write"
	ROLE_READ     Role = "read"
	ROLE_NONE     Role = "none"
	ROLE_UNKNOWN  Role = ""
)

// DecisionReason is a machine-distinguishable cause for a deploy decision.
// Fail-open reasons (PERMISSION_CHECK_FAILED, PROTECTION_CHECK_FAILED) are
// distinct from every explicit-allow reason so monitoring can alert on
// elevated fail-open rates without changing the default behavior.
type DecisionReason string

const (
	REASON_NO_PROTECTION            DecisionReason = "BRANCH_NOT_PROTECTED"
	REASON_NO_PROTECTION_CONFIGURED DecisionReason = "NO_PROTECTION_CONFIGURED"
	REASON_ROLE_QUALIFIES           DecisionReason = "ROLE_QUALIFIES"
	REASON_ROLE_INSUFFICIENT        DecisionReason = "ROLE_INSUFFICIENT"
	REASON_PERMISSION_CHECK_FAILED  DecisionReason = "PERMISSION_CHECK_FAILED"
	REASON_PROTECTION_CHECK_FAILED  DecisionReason = "PROTECTION_CHECK_FAILED"
)

// PermissionDecision is the allow/deny outcome for one run. It is computed
// fresh at the start of a run and never cached across runs.
type PermissionDecision struct {
	CanDeploy bool           `json:"canDeploy"`
	Reason    DecisionReason `json:"reason"`
	ActorRole Role           `json:"actorRole"`

	// Explanation is the human-readable account of a denial: which branch
	// is protected, which role it requires, and which role the actor has.
	// Empty for allowed decisions.
	Explanation string `json:"explanation,omitempty"`
}
