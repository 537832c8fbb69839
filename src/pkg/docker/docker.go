package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "docker")

// ImageBuilder builds and pushes container images.
type ImageBuilder interface {
	Build(ctx context.Context, imageRef, dockerfile, buildContext string) error
	Push(ctx context.Context, imageRef string) error
}

// Docker shells out to the docker CLI.
type Docker struct{}

// Ensure Docker implements ImageBuilder
var _ ImageBuilder = (*Docker)(nil)

func New() *Docker {
	return &Docker{}
}

// Build runs docker build with the given Dockerfile and context.
func (d *Docker) Build(ctx context.Context, imageRef, dockerfile, buildContext string) error {
	logger.WithField("image", imageRef).WithField("dockerfile", dockerfile).
		WithField("context", buildContext).Info("Building image...")

	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", imageRef,
		"-f", dockerfile,
		buildContext,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.WithField("stdout", stdout.String()).WithField("stderr", stderr.String()).Error("Build failed")
		return fmt.Errorf("docker build failed: %w\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}
	logger.WithField("image", imageRef).Info("Build succeeded")
	return nil
}

// Push pushes the image to its registry.
func (d *Docker) Push(ctx context.Context, imageRef string) error {
	logger.WithField("image", imageRef).Info("Pushing image...")

	cmd := exec.CommandContext(ctx, "docker", "push", imageRef)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.WithField("stdout", stdout.String()).WithField("stderr", stderr.String()).Error("Push failed")
		return fmt.Errorf("docker push failed: %w\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}
	logger.WithField("image", imageRef).Info("Push succeeded")
	return nil
}
