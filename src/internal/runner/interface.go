package runner

import "github.com/gh-nvat/gitops-deployctl/src/pkg/models"

type RunnerInterface interface {
	// Initialize the runner with necessary context and data
	Initialize() error

	// Compute the full deploy plan: identity, environment class, registry,
	// config layers, protection level and permission decision. Memoized for
	// the run.
	ComputePlan() (*models.DeployPlan, error)

	// Main routine to process the runner
	Process() error

	// Handling the export
	Output(data *models.ReportData) error
}
