package template

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// ManifestName is the project descriptor at the template root.
const ManifestName = "package.json"

// Template is a read-only template tree rooted at Root inside Fs.
type Template struct {
	Name        string
	Description string
	Fs          afero.Fs
	Root        string
}

type TemplateInfo struct {
	Name        string
	Description string
	Files       []string
}

type TemplateEngine interface {
	LoadTemplate() (*Template, error)
	ListFiles(t *Template) ([]string, error)
}

// ManifestPath returns the absolute path of the template manifest.
func (t *Template) ManifestPath() string {
	return filepath.Join(t.Root, ManifestName)
}
