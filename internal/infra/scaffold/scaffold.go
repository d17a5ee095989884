// Where: internal/infra/scaffold/scaffold.go
// What: Starter-file generation for new projects.
// Why: A fresh project should deploy with nothing but `skiff init` and a role.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/skiffhq/skiff-cli/internal/infra/fileops"
	"github.com/skiffhq/skiff-cli/internal/meta"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

// Data fills the starter templates. Empty fields fall back to the
// template defaults.
type Data struct {
	FunctionName string
	Runtime      string
	Handler      string
	Role         string
	Regions      []string
}

// Result reports one starter file. Created is false when the file
// already existed and was left alone.
type Result struct {
	Path    string
	Created bool
}

type starterFile struct {
	name     string
	template string
	mode     os.FileMode
}

// The bindings file is deliberately not scaffolded: deploy treats its
// mere presence as "manage bindings", and an empty one converges the
// remote mapping set to zero.
var starterFiles = []starterFile{
	{meta.ManifestFile, "skiff.yml.tmpl", 0o644},
	{meta.DefaultEnvFile, "env.tmpl", 0o644},
	{meta.PostBuildScript, "post_install.sh.tmpl", 0o755},
}

// Apply renders every starter file into projectDir. Existing files are
// never overwritten; they are reported with Created false.
func Apply(projectDir string, data Data) ([]Result, error) {
	data = withDefaults(data)

	results := make([]Result, 0, len(starterFiles))
	for _, file := range starterFiles {
		target := filepath.Join(projectDir, file.name)
		if fileops.FileOrDirExists(target) {
			results = append(results, Result{Path: file.name})
			continue
		}

		content, err := render(file.template, data)
		if err != nil {
			return results, err
		}
		if err := os.WriteFile(target, content, file.mode); err != nil {
			return results, fmt.Errorf("write %s: %w", file.name, err)
		}
		results = append(results, Result{Path: file.name, Created: true})
	}
	return results, nil
}

func withDefaults(data Data) Data {
	if data.FunctionName == "" {
		data.FunctionName = "my-function"
	}
	if data.Runtime == "" {
		data.Runtime = "nodejs22.x"
	}
	if data.Handler == "" {
		data.Handler = "index.handler"
	}
	if len(data.Regions) == 0 {
		data.Regions = []string{"us-east-1"}
	}
	return data
}

func render(name string, data Data) ([]byte, error) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if value, ok := templateCache.Load(name); ok {
		return value.(*template.Template), nil
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	templateCache.Store(name, tmpl)
	return tmpl, nil
}
