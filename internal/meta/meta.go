// Where: internal/meta/meta.go
// What: CLI-wide identity and layout constants.
// Why: Keep naming conventions in one place so commands and infra agree.
package meta

const (
	// Project identity
	AppName   = "skiff"
	Slug      = "skiff"
	EnvPrefix = "SKIFF"

	// Directory layout (relative to the project root)
	HomeDir  = ".skiff"
	StageDir = ".skiff/stage"
	DistDir  = ".skiff/dist"

	// Well-known file names
	ManifestFile        = "skiff.yml"
	PackageManifestFile = "package.json"
	PostBuildScript     = "post_install.sh"
	DefaultEnvFile      = ".env"
	SecretsEnvFile      = "deploy.env"
	EventSourcesFile    = "event_sources.json"
)
