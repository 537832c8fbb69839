package kubectl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "kubectl")

var (
	// ErrNotFound indicates that the requested cluster resource doesn't exist
	ErrNotFound = errors.New("resource not found")
)

// Store reads config sources and triggers rollouts via the kubectl CLI.
type Store interface {
	ConfigMap(ctx context.Context, namespace, name string) (map[string]string, bool, error)
	Secret(ctx context.Context, namespace, name string) (map[string]string, bool, error)
	SetImage(ctx context.Context, namespace, deployment, container, imageRef string) error
}

// Kubectl shells out to the kubectl binary.
type Kubectl struct{}

// Ensure Kubectl implements Store
var _ Store = (*Kubectl)(nil)

func New() *Kubectl {
	return &Kubectl{}
}

type resourceData struct {
	Data map[string]string `json:"data"`
}

// ConfigMap reads a ConfigMap's data. A missing ConfigMap is reported via
// the found flag, not an error: optional config layers are expected to be
// absent for most branches.
func (k *Kubectl) ConfigMap(ctx context.Context, namespace, name string) (map[string]string, bool, error) {
	out, err := k.getJSON(ctx, namespace, "configmap", name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var res resourceData
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, false, fmt.Errorf("failed to parse configmap %q: %w", name, err)
	}
	if res.Data == nil {
		res.Data = map[string]string{}
	}
	return res.Data, true, nil
}

// Secret reads a Secret's data with values base64-decoded.
func (k *Kubectl) Secret(ctx context.Context, namespace, name string) (map[string]string, bool, error) {
	out, err := k.getJSON(ctx, namespace, "secret", name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var res resourceData
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, false, fmt.Errorf("failed to parse secret %q: %w", name, err)
	}

	decoded := make(map[string]string, len(res.Data))
	for key, val := range res.Data {
		plain, err := base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, false, fmt.Errorf("failed to decode secret %q key %q: %w", name, key, err)
		}
		decoded[key] = string(plain)
	}
	return decoded, true, nil
}

// SetImage triggers a rolling update of the deployment's container image.
func (k *Kubectl) SetImage(ctx context.Context, namespace, deployment, container, imageRef string) error {
	logger.WithField("namespace", namespace).WithField("deployment", deployment).
		WithField("image", imageRef).Info("Setting deployment image...")

	cmd := exec.CommandContext(ctx, "kubectl", "set", "image",
		fmt.Sprintf("deployment/%s", deployment),
		fmt.Sprintf("%s=%s", container, imageRef),
		"-n", namespace,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("kubectl set image failed: %w\nOutput: %s", err, string(output))
	}
	logger.WithField("output", string(output)).Debug("kubectl set image succeeded")
	return nil
}

func (k *Kubectl) getJSON(ctx context.Context, namespace, kind, name string) ([]byte, error) {
	logger.WithField("namespace", namespace).WithField("kind", kind).WithField("name", name).
		Debug("Reading cluster resource...")

	cmd := exec.CommandContext(ctx, "kubectl", "get", kind, name, "-n", namespace, "-o", "json")

	// Use Output() instead of CombinedOutput() to keep stderr warnings out of the JSON
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := string(exitErr.Stderr)
			if strings.Contains(stderr, "NotFound") {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("kubectl get %s failed: %w\nStderr: %s", kind, err, stderr)
		}
		return nil, fmt.Errorf("kubectl get %s failed: %w", kind, err)
	}
	return output, nil
}
