package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"ts-backend-starter/pkg/variant"
)

// Generate reads the template manifest from src, rewrites name, description
// and dependencies for projectName and v, and writes the result to outPath in
// dst.
func Generate(src afero.Fs, templateManifestPath string, dst afero.Fs, outPath, projectName string, v variant.Variant) error {
	m, err := Load(src, templateManifestPath)
	if err != nil {
		return err
	}

	m.SetName(projectName)
	m.SetDescription(DefaultDescription)
	if err := m.ApplyVariant(v); err != nil {
		return err
	}

	data, err := m.Encode()
	if err != nil {
		return err
	}

	if err := WriteFileAtomic(dst, outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename. On failure the temp file is removed and any
// existing file at path is left unchanged. The parent directory must exist.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	f, err := afero.TempFile(fs, filepath.Dir(path), ".manifest-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	success := false
	defer func() {
		if !success {
			fs.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}
