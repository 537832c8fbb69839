package configlayer

import (
	"context"
	"reflect"
	"testing"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

func layerNames(plan models.ConfigLayerPlan) []string {
	names := make([]string, len(plan))
	for i, l := range plan {
		names[i] = string(l.Kind) + ":" + l.SourceName
	}
	return names
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		want   []string
	}{
		{
			name:   "branch with suffix",
			branch: "beta/api",
			want:   []string{"configmap:general", "configmap:beta", "configmap:beta-api"},
		},
		{
			name:   "branch without suffix",
			branch: "main",
			want:   []string{"configmap:general", "configmap:main"},
		},
		{
			name:   "split on first slash only",
			branch: "beta/api/v2",
			want:   []string{"configmap:general", "configmap:beta", "configmap:beta-api-v2"},
		},
		{
			name:   "suffix layer name is sanitized",
			branch: "hotfix/db_connection",
			want:   []string{"configmap:general", "configmap:hotfix", "configmap:hotfix-db-connection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layerNames(Plan(tt.branch))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan(%q) = %v, want %v", tt.branch, got, tt.want)
			}
		})
	}
}

func TestPlanWithSecrets(t *testing.T) {
	got := layerNames(PlanWithSecrets("beta/api"))
	want := []string{"configmap:general", "configmap:beta", "configmap:beta-api", "secret:beta-api"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PlanWithSecrets() = %v, want %v", got, want)
	}
}

// Last-write-wins: with three layers overlapping on key "X", the merged
// value comes from the highest-precedence (last-declared) layer.
func TestMergeLastWriteWins(t *testing.T) {
	merged := Merge([]map[string]string{
		{"X": "general", "A": "1"},
		{"X": "base", "B": "2"},
		{"X": "branch", "C": "3"},
	})

	want := map[string]string{"X": "branch", "A": "1", "B": "2", "C": "3"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("Merge() = %v, want %v", merged, want)
	}
}

type fakeStore struct {
	configmaps map[string]map[string]string
	secrets    map[string]map[string]string
}

func (f *fakeStore) ConfigMap(_ context.Context, _, name string) (map[string]string, bool, error) {
	v, ok := f.configmaps[name]
	return v, ok, nil
}

func (f *fakeStore) Secret(_ context.Context, _, name string) (map[string]string, bool, error) {
	v, ok := f.secrets[name]
	return v, ok, nil
}

func TestApply(t *testing.T) {
	store := &fakeStore{
		configmaps: map[string]map[string]string{
			"general":  {"LOG_LEVEL": "info", "DB_HOST": "db.general"},
			"beta":     {"DB_HOST": "db.beta"},
			"beta-api": {"DB_HOST": "db.beta-api", "API_KEY": "plain"},
		},
		secrets: map[string]map[string]string{
			"beta-api": {"API_KEY": "secret"},
		},
	}

	got, err := Apply(context.Background(), store, "widget", PlanWithSecrets("beta/api"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := map[string]string{
		"LOG_LEVEL": "info",
		"DB_HOST":   "db.beta-api",
		"API_KEY":   "secret", // secret layer overrides the configmap layer
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestApplySkipsMissingSources(t *testing.T) {
	store := &fakeStore{
		configmaps: map[string]map[string]string{
			"general": {"A": "1"},
		},
	}
	got, err := Apply(context.Background(), store, "widget", PlanWithSecrets("feature/x"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := map[string]string{"A": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}
