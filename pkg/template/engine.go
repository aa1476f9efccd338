package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

//go:embed all:files
var bundled embed.FS

const (
	bundledName        = "ts-backend"
	bundledDescription = "Express + TypeScript backend with MongoDB or PostgreSQL"
	bundledDir         = "files"
	bundledRoot        = "/template"
)

// ErrNotFound is returned when a template tree or its manifest is missing.
var ErrNotFound = errors.New("template not found")

type FileSystemEngine struct {
	templateDir string
}

// NewFileSystemEngine loads the template from templateDir on disk.
func NewFileSystemEngine(templateDir string) *FileSystemEngine {
	return &FileSystemEngine{
		templateDir: templateDir,
	}
}

// NewEngine loads the template bundled into the binary.
func NewEngine() *FileSystemEngine {
	return &FileSystemEngine{
		templateDir: "",
	}
}

func (e *FileSystemEngine) LoadTemplate() (*Template, error) {
	var (
		tmpl *Template
		err  error
	)
	if e.templateDir != "" {
		tmpl, err = e.loadFromDisk()
	} else {
		tmpl, err = loadBundled()
	}
	if err != nil {
		return nil, err
	}

	if _, err := tmpl.Fs.Stat(tmpl.ManifestPath()); err != nil {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotFound, tmpl.Root, ManifestName)
	}
	return tmpl, nil
}

func (e *FileSystemEngine) loadFromDisk() (*Template, error) {
	root, err := filepath.Abs(e.templateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template directory: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template %q is not a directory", root)
	}

	return &Template{
		Name:        filepath.Base(root),
		Description: "Custom template",
		Fs:          afero.NewReadOnlyFs(afero.NewOsFs()),
		Root:        root,
	}, nil
}

// loadBundled copies the embedded tree into memory so it can be served
// through the same afero interface as an on-disk template.
func loadBundled() (*Template, error) {
	mem := afero.NewMemMapFs()
	root := filepath.FromSlash(bundledRoot)

	err := fs.WalkDir(bundled, bundledDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := path.Clean(p[len(bundledDir):])
		target := filepath.Join(root, filepath.FromSlash(rel))

		if d.IsDir() {
			return mem.MkdirAll(target, 0o755)
		}

		data, err := bundled.ReadFile(p)
		if err != nil {
			return err
		}
		return afero.WriteFile(mem, target, data, 0o644)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled template: %w", err)
	}

	return &Template{
		Name:        bundledName,
		Description: bundledDescription,
		Fs:          afero.NewReadOnlyFs(mem),
		Root:        root,
	}, nil
}

// ListFiles returns every file in the template, relative to its root, in
// slash form and sorted.
func (e *FileSystemEngine) ListFiles(t *Template) ([]string, error) {
	var files []string
	err := afero.Walk(t.Fs, t.Root, func(p string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(t.Root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list template files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// Info summarizes a loaded template for listing.
func (e *FileSystemEngine) Info(t *Template) (TemplateInfo, error) {
	files, err := e.ListFiles(t)
	if err != nil {
		return TemplateInfo{}, err
	}
	return TemplateInfo{
		Name:        t.Name,
		Description: t.Description,
		Files:       files,
	}, nil
}
