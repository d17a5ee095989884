// Where: internal/command/branding.go
// What: Brand-aware CLI naming env.
// Why: Keep user-facing command names consistent with the current brand.
package command

import (
	"os"
	"strings"

	"github.com/skiffhq/skiff-cli/internal/constants"
	"github.com/skiffhq/skiff-cli/internal/meta"
)

func cliName() string {
	name := strings.TrimSpace(os.Getenv(constants.EnvSkiffCliName))
	if name == "" {
		name = strings.TrimSpace(meta.AppName)
	}
	if name == "" {
		name = "skiff"
	}
	return name
}
