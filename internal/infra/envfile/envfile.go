// Where: internal/infra/envfile/envfile.go
// What: KEY=VALUE environment file parsing.
// Why: Function environment variables are declared in dotenv-style files.
package envfile

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Read parses path as newline-delimited KEY=VALUE pairs. Blank lines and
// comments are tolerated and an empty file yields an empty, non-nil map.
// A missing or unreadable file is an error.
func Read(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	if vars == nil {
		vars = map[string]string{}
	}
	return vars, nil
}
