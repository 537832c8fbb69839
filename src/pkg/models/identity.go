package models

// ProjectIdentity is the derived identity of the service being deployed.
// It is computed once at the start of a run and is immutable for the run's
// duration. Every field has a deterministic default; resolution never fails,
// it degrades to sentinel values instead.
type ProjectIdentity struct {
	RepoOwner       string `json:"repoOwner"`
	RepoName        string `json:"repoName"`
	BranchName      string `json:"branchName"`
	SanitizedBranch string `json:"sanitizedBranch"`

	Namespace      string `json:"namespace"`
	DeploymentName string `json:"deploymentName"`
	AppName        string `json:"appName"`

	Registry string `json:"registry"`

	CommitHash    string `json:"commitHash"`
	CommitMessage string `json:"commitMessage,omitempty"`
}

// IdentityOverrides are explicit per-field overrides. A non-empty override
// wins unconditionally over any computed default.
type IdentityOverrides struct {
	RepoOwner      string
	RepoName       string
	Namespace      string
	DeploymentName string
	AppName        string
	Registry       string
	CommitHash     string
}

// ImageRef returns the registry-qualified image reference for this identity.
func (p ProjectIdentity) ImageRef() string {
	return p.Registry + "/" + p.AppName + ":" + p.CommitHash
}
