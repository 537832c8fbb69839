package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

// VariableSource reads branch protection lists from two repository Actions
// variables holding comma-separated branch names. It implements
// protection.MetadataSource. An absent variable means that list is not
// configured, which is distinct from a variable that exists but does not
// contain the branch.
type VariableSource struct {
	Client      MetadataClient
	AdminVar    string
	MaintainVar string
}

func (s *VariableSource) ProtectionLists(ctx context.Context, owner, repo string) (models.ProtectionLists, error) {
	adminRaw, adminFound, err := s.Client.RepoVariable(ctx, owner, repo, s.AdminVar)
	if err != nil {
		return models.ProtectionLists{}, fmt.Errorf("failed to fetch admin branch list: %w", err)
	}
	maintainRaw, maintainFound, err := s.Client.RepoVariable(ctx, owner, repo, s.MaintainVar)
	if err != nil {
		return models.ProtectionLists{}, fmt.Errorf("failed to fetch maintain branch list: %w", err)
	}

	return models.ProtectionLists{
		Admin:              SplitBranchList(adminRaw),
		Maintain:           SplitBranchList(maintainRaw),
		AdminConfigured:    adminFound,
		MaintainConfigured: maintainFound,
	}, nil
}

// SplitBranchList parses a comma-separated branch list, trimming whitespace
// and dropping empty entries.
func SplitBranchList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	branches := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			branches = append(branches, p)
		}
	}
	return branches
}
