// Where: internal/infra/manifest/manifest.go
// What: Project manifest (skiff.yml) and package-manifest name fallback.
// Why: Let projects declare deploy defaults once instead of repeating flags.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/meta"
)

// Manifest holds per-project deploy defaults. Flags always override
// manifest values; a zero field means "not declared".
type Manifest struct {
	FunctionName     string   `yaml:"function_name,omitempty"`
	Handler          string   `yaml:"handler,omitempty"`
	Role             string   `yaml:"role,omitempty"`
	Runtime          string   `yaml:"runtime,omitempty"`
	MemorySize       int32    `yaml:"memory_size,omitempty"`
	Timeout          int32    `yaml:"timeout,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	Regions          []string `yaml:"regions,omitempty"`
	Profile          string   `yaml:"profile,omitempty"`
	DockerImage      string   `yaml:"docker_image,omitempty"`
	EnvFile          string   `yaml:"env_file,omitempty"`
	EventSourcesFile string   `yaml:"event_sources_file,omitempty"`
	Excludes         []string `yaml:"excludes,omitempty"`
	SubnetIDs        []string `yaml:"subnet_ids,omitempty"`
	SecurityGroupIDs []string `yaml:"security_group_ids,omitempty"`
	TracingMode      string   `yaml:"tracing_mode,omitempty"`
	DeadLetterArn    *string  `yaml:"dead_letter_arn,omitempty"`
	S3Bucket         string   `yaml:"s3_bucket,omitempty"`
	S3Key            string   `yaml:"s3_key,omitempty"`
}

// Path returns the manifest location for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, meta.ManifestFile)
}

// Load reads and parses the manifest at path.
func Load(path string) (Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read project manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(payload, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode project manifest: %w", err)
	}
	return m, nil
}

// LoadOptional loads the project's manifest when one exists. The manifest
// is optional; a missing file yields a zero Manifest.
func LoadOptional(projectDir string) (Manifest, bool, error) {
	path := Path(projectDir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("stat project manifest: %w", err)
	}
	m, err := Load(path)
	if err != nil {
		return Manifest{}, false, err
	}
	return m, true, nil
}

// FallbackFunctionName derives a function base name from the package
// manifest's name field, sanitized for the remote platform. A missing
// package manifest yields an empty name, not an error.
func FallbackFunctionName(projectDir string) (string, error) {
	payload, err := os.ReadFile(filepath.Join(projectDir, meta.PackageManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read package manifest: %w", err)
	}

	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &pkg); err != nil {
		return "", fmt.Errorf("decode package manifest: %w", err)
	}
	name := strings.TrimSpace(pkg.Name)
	if name == "" {
		return "", nil
	}
	return function.SanitizeName(name), nil
}
