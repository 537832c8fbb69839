package protection

import (
	"context"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

// StaticSource serves protection lists from local configuration. It is the
// fallback metadata source when no GitHub client is available (e.g. runs
// without a token), and the standard fake in tests.
type StaticSource struct {
	Admin              []string
	Maintain           []string
	AdminConfigured    bool
	MaintainConfigured bool
}

var _ MetadataSource = (*StaticSource)(nil)

func (s *StaticSource) ProtectionLists(_ context.Context, _, _ string) (models.ProtectionLists, error) {
	return models.ProtectionLists{
		Admin:              s.Admin,
		Maintain:           s.Maintain,
		AdminConfigured:    s.AdminConfigured,
		MaintainConfigured: s.MaintainConfigured,
	}, nil
}
