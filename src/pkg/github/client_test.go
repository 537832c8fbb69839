package github

import (
	"context"
	"reflect"
	"testing"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

func TestParseOwnerRepo(t *testing.T) {
	tests := []struct {
		name      string
		repo      string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{name: "valid", repo: "acme/widget", wantOwner: "acme", wantRepo: "widget"},
		{name: "missing slash", repo: "acme", wantErr: true},
		{name: "empty owner", repo: "/widget", wantErr: true},
		{name: "empty repo", repo: "acme/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseOwnerRepo(tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOwnerRepo() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && (owner != tt.wantOwner || repo != tt.wantRepo) {
				t.Errorf("ParseOwnerRepo() = %q/%q, want %q/%q", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestMapRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
	}{
		{in: "admin", want: models.ROLE_ADMIN},
		{in: "maintain", want: models.ROLE_MAINTAIN},
		{in: "write", want: models.ROLE_WRITE},
		{in: "push", want: models.ROLE_WRITE},
		{in: "read", want: models.ROLE_READ},
		{in: "pull", want: models.ROLE_READ},
		{in: "triage", want: models.ROLE_READ},
		{in: "none", want: models.ROLE_NONE},
		{in: "", want: models.ROLE_NONE},
		{in: "ADMIN", want: models.ROLE_ADMIN},
		{in: "something-new", want: models.ROLE_NONE},
	}
	for _, tt := range tests {
		t.Run("role_"+tt.in, func(t *testing.T) {
			if got := MapRole(tt.in); got != tt.want {
				t.Errorf("MapRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitBranchList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "simple", raw: "main,staging", want: []string{"main", "staging"}},
		{name: "spaces trimmed", raw: " main , staging ", want: []string{"main", "staging"}},
		{name: "empty entries dropped", raw: "main,,staging,", want: []string{"main", "staging"}},
		{name: "empty string", raw: "", want: nil},
		{name: "whitespace only", raw: "   ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitBranchList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitBranchList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

type fakeMetadata struct {
	vars map[string]string
}

func (f *fakeMetadata) RepoVariable(_ context.Context, _, _, name string) (string, bool, error) {
	v, ok := f.vars[name]
	return v, ok, nil
}

func (f *fakeMetadata) CollaboratorRole(context.Context, string, string, string) (models.Role, error) {
	return models.ROLE_NONE, nil
}

func TestVariableSourceProtectionLists(t *testing.T) {
	src := &VariableSource{
		Client:      &fakeMetadata{vars: map[string]string{"DEPLOY_ADMIN_BRANCHES": "main, master"}},
		AdminVar:    "DEPLOY_ADMIN_BRANCHES",
		MaintainVar: "DEPLOY_MAINTAIN_BRANCHES",
	}

	lists, err := src.ProtectionLists(context.Background(), "acme", "widget")
	if err != nil {
		t.Fatalf("ProtectionLists() error = %v", err)
	}
	if !lists.AdminConfigured {
		t.Error("AdminConfigured = false, want true")
	}
	if lists.MaintainConfigured {
		t.Error("MaintainConfigured = true, want false (variable absent)")
	}
	if !reflect.DeepEqual(lists.Admin, []string{"main", "master"}) {
		t.Errorf("Admin = %v, want [main master]", lists.Admin)
	}
}
