package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/pohlang/plhub/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Description is a short project description.
	Description string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string

	// Dirs are extra directories created empty.
	Dirs []string
}

// Available templates.
var templates = map[string]*Template{
	"basic":   basicTemplate(),
	"console": consoleTemplate(),
	"web":     webTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E305").
			WithDetail("Template '" + name + "' not found")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	for _, sub := range t.Dirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return err
		}
	}

	for relPath, content := range t.Files {
		tmpl, err := template.New(relPath).Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		path := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

func basicTemplate() *Template {
	return &Template{
		Name:        "basic",
		Description: "Simple console application",
		Dirs:        []string{"tests"},
		Files: map[string]string{
			"src/main.poh": `# {{.ProjectName}}
Write "Hello from PohLang!"
Write "This is a basic project template."
`,
			"README.md": readme,
		},
	}
}

func consoleTemplate() *Template {
	return &Template{
		Name:        "console",
		Description: "Console application with input and loops",
		Dirs:        []string{"tests"},
		Files: map[string]string{
			"src/main.poh": `# {{.ProjectName}}
Write "Welcome to your PohLang console application!"
Write ""

Ask for name
Write "Hello " plus name plus "!"

Set count to 0
Repeat 3
    Set count to count plus 1
    Write "Loop iteration: " plus count
End

Write ""
Write "Thanks for using PohLang!"
`,
			"README.md": readme,
		},
	}
}

func webTemplate() *Template {
	return &Template{
		Name:        "web",
		Description: "Web application starter (experimental)",
		Dirs:        []string{"tests", "public"},
		Files: map[string]string{
			"src/main.poh": `# {{.ProjectName}}
Write "Web application features coming soon!"
Write "For now, this is a placeholder."
`,
			"README.md": readme,
		},
	}
}

const readme = `# {{.ProjectName}}

{{.Description}}

## Developing

` + "```bash" + `
plhub dev
` + "```" + `

## Building

` + "```bash" + `
plhub build
` + "```" + `
`
