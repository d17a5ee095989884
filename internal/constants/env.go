// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// CLI configuration
	EnvSkiffEnv         = "SKIFF_ENV"
	EnvSkiffRegion      = "SKIFF_REGION"
	EnvSkiffProfile     = "SKIFF_PROFILE"
	EnvSkiffDockerImage = "SKIFF_DOCKER_IMAGE"
	EnvSkiffInteractive = "SKIFF_INTERACTIVE"
	EnvSkiffCliName     = "SKIFF_CLI_NAME"

	// AWS standard variables read as region fallbacks
	EnvAWSRegion        = "AWS_REGION"
	EnvAWSDefaultRegion = "AWS_DEFAULT_REGION"
)
