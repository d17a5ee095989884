// Where: internal/domain/function/config.go
// What: Deployment configuration record and its synthesis rules.
// Why: Remote updates must omit settings the caller never touched.
package function

import (
	"regexp"
	"strings"
	"time"
)

// maxLocalInvokeTimeout bounds how long a local invocation is allowed to
// run. The remote timeout is sent uncapped.
const maxLocalInvokeTimeout = 300 * time.Second

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9-_]`)

// OptionalString distinguishes an unset value from one explicitly set,
// including set-to-empty. Unset means the remote field is left untouched;
// set-to-empty means it is cleared.
type OptionalString struct {
	value string
	set   bool
}

// SetString returns an OptionalString explicitly set to v.
func SetString(v string) OptionalString {
	return OptionalString{value: v, set: true}
}

// Get returns the value and whether it was explicitly set.
func (o OptionalString) Get() (string, bool) {
	return o.value, o.set
}

// IsSet reports whether the value was explicitly set.
func (o OptionalString) IsSet() bool {
	return o.set
}

// Input carries the declarative deployment settings as the caller supplied
// them. EnvVars is nil when no env config file was given; an empty non-nil
// map means the file existed and was empty.
type Input struct {
	Name             string
	Environment      string
	Version          string
	Handler          string
	Role             string
	Runtime          string
	MemorySize       int32
	Timeout          int32
	Description      string
	SubnetIDs        []string
	SecurityGroupIDs []string
	EnvVars          map[string]string
	DeadLetterArn    OptionalString
	TracingMode      string
	Publish          bool
}

// Config is the synthesized remote configuration record. Field absence
// carries meaning: a nil Environment map, an unset DeadLetterArn, and an
// empty TracingMode are all omitted from remote calls rather than sent
// as empty values.
type Config struct {
	Name             string
	Handler          string
	Role             string
	Runtime          string
	MemorySize       int32
	Timeout          int32
	Description      string
	SubnetIDs        []string
	SecurityGroupIDs []string
	Environment      map[string]string
	DeadLetterArn    OptionalString
	TracingMode      string
	Publish          bool
}

// Synthesize builds the full Config from declarative input. It is pure:
// deterministic, idempotent, and free of I/O.
func Synthesize(in Input) Config {
	subnets, groups := networkPlacement(in.SubnetIDs, in.SecurityGroupIDs)
	return Config{
		Name:             FunctionName(in.Name, in.Environment, in.Version),
		Handler:          in.Handler,
		Role:             in.Role,
		Runtime:          in.Runtime,
		MemorySize:       in.MemorySize,
		Timeout:          in.Timeout,
		Description:      in.Description,
		SubnetIDs:        subnets,
		SecurityGroupIDs: groups,
		Environment:      in.EnvVars,
		DeadLetterArn:    in.DeadLetterArn,
		TracingMode:      strings.TrimSpace(in.TracingMode),
		Publish:          in.Publish,
	}
}

// FunctionName joins base name, environment, and version with dashes,
// skipping empty parts. "fn", "prod", "v1" yields "fn-prod-v1".
func FunctionName(base, environment, version string) string {
	name := base
	if environment != "" {
		name += "-" + environment
	}
	if version != "" {
		name += "-" + version
	}
	return name
}

// SanitizeName replaces characters the platform rejects in function names.
func SanitizeName(name string) string {
	return nameSanitizer.ReplaceAllString(name, "-")
}

// InvokeTimeout returns the timeout for local invocation timing, capped
// at five minutes. The remote configuration keeps the uncapped value.
func (c Config) InvokeTimeout() time.Duration {
	timeout := time.Duration(c.Timeout) * time.Second
	if timeout > maxLocalInvokeTimeout {
		return maxLocalInvokeTimeout
	}
	return timeout
}

// HasVPC reports whether the config carries a network placement.
func (c Config) HasVPC() bool {
	return len(c.SubnetIDs) > 0
}

// networkPlacement applies the both-or-nothing rule: a partial
// placement is silently dropped.
func networkPlacement(subnets, groups []string) ([]string, []string) {
	if len(subnets) == 0 || len(groups) == 0 {
		return nil, nil
	}
	return subnets, groups
}
