package identity

import (
	"regexp"
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

const (
	// UNKNOWN_REPO is the sentinel repo name used when the git URL is
	// missing or unparseable. Resolution must never fail on a weird
	// checkout, it degrades instead.
	UNKNOWN_REPO = "unknown-repo"

	DEFAULT_BRANCH = "main"

	// FALLBACK_TAG is used when no commit SHA was provided.
	FALLBACK_TAG = "latest"

	SHORT_HASH_LENGTH      = 7
	COMMIT_MESSAGE_MAX_LEN = 200

	ORIGIN_PREFIX = "origin/"
)

// ownerRepoPattern matches the trailing <owner>/<name>[.git] of a git
// remote URL. It covers both the SSH shorthand (git@host:owner/name.git)
// and HTTPS (https://host/owner/name) forms: in either case the owner
// segment is preceded by ':' or '/'.
var ownerRepoPattern = regexp.MustCompile(`[:/]([^/:]+)/([^/:]+?)(?:\.git)?/?$`)

// unsafeNameChars matches every character that is not allowed in a
// sanitized branch name before lowercasing.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// Inputs are the explicit inputs to identity resolution. Callers construct
// this from flags and environment variables; the resolver itself reads no
// ambient state.
type Inputs struct {
	GitURL string

	// Branch precedence: BranchOverride, then EnvBranch with a leading
	// "origin/" prefix stripped, then EnvBranchAlt, then "main".
	BranchOverride string
	EnvBranch      string
	EnvBranchAlt   string

	CommitSHA     string
	CommitMessage string

	Overrides models.IdentityOverrides
}

// Resolve derives a complete ProjectIdentity from the given inputs. It is
// total: malformed or missing input yields sentinel defaults, never an
// error. An explicit override wins unconditionally for its field.
func Resolve(in Inputs) models.ProjectIdentity {
	owner, repoName := OwnerRepoFromURL(in.GitURL)
	if in.Overrides.RepoOwner != "" {
		owner = in.Overrides.RepoOwner
	}
	if in.Overrides.RepoName != "" {
		repoName = in.Overrides.RepoName
	}

	branch := resolveBranch(in)
	sanitized := Sanitize(branch)

	namespace := repoName
	if in.Overrides.Namespace != "" {
		namespace = in.Overrides.Namespace
	}

	derivedName := repoName + "-" + sanitized
	deploymentName := derivedName
	if in.Overrides.DeploymentName != "" {
		deploymentName = in.Overrides.DeploymentName
	}
	appName := derivedName
	if in.Overrides.AppName != "" {
		appName = in.Overrides.AppName
	}

	commitHash := ShortHash(in.CommitSHA)
	if in.Overrides.CommitHash != "" {
		commitHash = in.Overrides.CommitHash
	}

	return models.ProjectIdentity{
		RepoOwner:       owner,
		RepoName:        repoName,
		BranchName:      branch,
		SanitizedBranch: sanitized,
		Namespace:       namespace,
		DeploymentName:  deploymentName,
		AppName:         appName,
		Registry:        in.Overrides.Registry, // filled in by the registry selector when empty
		CommitHash:      commitHash,
		CommitMessage:   truncate(in.CommitMessage, COMMIT_MESSAGE_MAX_LEN),
	}
}

func resolveBranch(in Inputs) string {
	if in.BranchOverride != "" {
		return in.BranchOverride
	}
	if in.EnvBranch != "" {
		return strings.TrimPrefix(in.EnvBranch, ORIGIN_PREFIX)
	}
	if in.EnvBranchAlt != "" {
		return in.EnvBranchAlt
	}
	return DEFAULT_BRANCH
}

// OwnerRepoFromURL extracts the trailing owner and repo name segments from
// a git remote URL, stripping a ".git" suffix. Both values fall back to
// sentinels when the URL does not match.
func OwnerRepoFromURL(gitURL string) (owner, name string) {
	m := ownerRepoPattern.FindStringSubmatch(strings.TrimSpace(gitURL))
	if m == nil {
		return "", UNKNOWN_REPO
	}
	return m[1], m[2]
}

// RepoNameFromURL returns only the repo name segment.
func RepoNameFromURL(gitURL string) string {
	_, name := OwnerRepoFromURL(gitURL)
	return name
}

// Sanitize transforms a branch name into a Kubernetes-safe resource name:
// "/" becomes "-", every other character outside [a-zA-Z0-9-] becomes "-",
// and the result is lowercased. Sanitize is idempotent and its output
// always matches ^[a-z0-9-]*$.
func Sanitize(branch string) string {
	s := strings.ReplaceAll(branch, "/", "-")
	s = unsafeNameChars.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

// ShortHash returns the first 7 characters of a commit SHA, or the literal
// fallback tag when no SHA was provided.
func ShortHash(sha string) string {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return FALLBACK_TAG
	}
	if len(sha) > SHORT_HASH_LENGTH {
		return sha[:SHORT_HASH_LENGTH]
	}
	return sha
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
