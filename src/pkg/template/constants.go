package template

// Built-in notification message templates. They render against
// models.ReportData.
const (
	ToolSignature = "gitops-deployctl"

	DeploySuccessTemplate = `{{ .Plan.Identity.RepoName }} deployed
branch:      {{ .Plan.Identity.BranchName }}
environment: {{ .Plan.Environment }}
image:       {{ .Plan.Identity.ImageRef }}
namespace:   {{ .Plan.Identity.Namespace }}
deployment:  {{ .Plan.Identity.DeploymentName }}
{{- if .Plan.Identity.CommitMessage }}
commit:      {{ .Plan.Identity.CommitMessage }}
{{- end }}`

	DeployDeniedTemplate = `{{ .Plan.Identity.RepoName }}: deploy BLOCKED
branch:      {{ .Plan.Identity.BranchName }}
environment: {{ .Plan.Environment }}
reason:      {{ .Plan.Decision.Reason }}
{{- if .Plan.Decision.Explanation }}
{{ .Plan.Decision.Explanation }}
{{- end }}`

	DeployFailureTemplate = `{{ .Plan.Identity.RepoName }}: deploy FAILED
branch:      {{ .Plan.Identity.BranchName }}
environment: {{ .Plan.Environment }}
image:       {{ .Plan.Identity.ImageRef }}`
)
