// Where: internal/infra/container/daemon.go
// What: Docker SDK helpers for container-routed dependency installs.
// Why: Fail fast with a clear message when the daemon or build image is unavailable.
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/skiffhq/skiff-cli/internal/infra/execx"
)

// DockerClient defines the subset of Docker SDK methods used by this package.
// This interface enables mocking the Docker client in tests.
type DockerClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
}

// NewDockerClient constructs a Docker SDK client using environment defaults.
func NewDockerClient() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// EnsureImage verifies the daemon is reachable and the build image exists
// locally, pulling it through the docker CLI when absent so the user sees
// native pull progress.
func EnsureImage(ctx context.Context, dc DockerClient, runner execx.CommandRunner, ref string) error {
	if _, err := dc.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon unreachable: %w", err)
	}

	present, err := HasImage(ctx, dc, ref)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	if err := runner.Run(ctx, "", "docker", "pull", ref); err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	return nil
}

// HasImage reports whether an image matching the reference exists locally.
func HasImage(ctx context.Context, dc DockerClient, ref string) (bool, error) {
	images, err := dc.ImageList(ctx, image.ListOptions{All: true})
	if err != nil {
		return false, fmt.Errorf("list images: %w", err)
	}

	needle := normalizeRef(ref)
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == needle {
				return true, nil
			}
		}
	}
	return false, nil
}

// normalizeRef appends the default tag when the reference names none.
// The tag separator is a colon after the last path segment, so registry
// ports (host:5000/node) are not mistaken for tags.
func normalizeRef(ref string) string {
	base := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		base = ref[i+1:]
	}
	if strings.Contains(base, ":") {
		return ref
	}
	return ref + ":latest"
}
