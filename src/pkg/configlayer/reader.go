package configlayer

import (
	"context"
	"fmt"

	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.New().WithFields(log.Fields{
	"package": "configlayer",
})

// Store reads one named key/value source from the cluster. The found flag
// is false when the source does not exist; that is an expected condition
// (layers are optional), not an error.
type Store interface {
	ConfigMap(ctx context.Context, namespace, name string) (values map[string]string, found bool, err error)
	Secret(ctx context.Context, namespace, name string) (values map[string]string, found bool, err error)
}

// Apply reads every layer of the plan from the store and merges them with
// last-write-wins semantics. Missing sources are skipped; read errors abort
// since a half-applied plan is worse than none.
func Apply(
	ctx context.Context,
	store Store,
	namespace string,
	plan models.ConfigLayerPlan,
) (map[string]string, error) {
	layerValues := make([]map[string]string, 0, len(plan))
	for _, layer := range plan {
		var (
			values map[string]string
			found  bool
			err    error
		)
		switch layer.Kind {
		case models.LAYER_KIND_SECRET:
			values, found, err = store.Secret(ctx, namespace, layer.SourceName)
		default:
			values, found, err = store.ConfigMap(ctx, namespace, layer.SourceName)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s layer %q: %w", layer.Kind, layer.SourceName, err)
		}
		if !found {
			logger.WithField("layer", layer.SourceName).WithField("kind", layer.Kind).
				Debug("Layer source not found, skipping")
			continue
		}
		if layer.Scope == models.LAYER_SCOPE_KEYS {
			values = filterKeys(values, layer.Keys)
		}
		layerValues = append(layerValues, values)
	}
	return Merge(layerValues), nil
}

func filterKeys(values map[string]string, keys []string) map[string]string {
	filtered := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			filtered[k] = v
		}
	}
	return filtered
}
