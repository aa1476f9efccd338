// Package materialize copies a template tree into a project directory.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Result lists what a copy produced, relative to the destination root in
// slash form, in the order entries were written.
type Result struct {
	Files []string
	Dirs  []string
}

// CopyTree copies every entry below srcRoot in src to the same relative
// location below dstRoot in dst. Entries for which skip reports true are not
// copied; a skipped directory is not descended into. Existing directories are
// reused. The first I/O error aborts the copy and whatever was already
// written stays in place.
func CopyTree(src afero.Fs, srcRoot string, dst afero.Fs, dstRoot string, skip Skipper) (Result, error) {
	if skip == nil {
		skip = Never
	}

	info, err := src.Stat(srcRoot)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat source %s: %w", srcRoot, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("source %s is not a directory", srcRoot)
	}

	c := &copier{src: src, dst: dst, srcRoot: srcRoot, dstRoot: dstRoot, skip: skip}
	if err := dst.MkdirAll(dstRoot, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create directory %s: %w", dstRoot, err)
	}
	if err := c.copyDir(srcRoot, dstRoot); err != nil {
		return c.result, err
	}
	return c.result, nil
}

type copier struct {
	src, dst         afero.Fs
	srcRoot, dstRoot string
	skip             Skipper
	result           Result
}

func (c *copier) copyDir(srcDir, dstDir string) error {
	entries, err := afero.ReadDir(c.src, srcDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", srcDir, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(srcDir, entry.Name())
		dstPath := filepath.Join(dstDir, entry.Name())

		if c.skip.ShouldSkip(srcPath) {
			continue
		}

		if entry.IsDir() {
			if err := c.dst.MkdirAll(dstPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			c.result.Dirs = append(c.result.Dirs, c.rel(dstPath))
			if err := c.copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if !entry.Mode().IsRegular() {
			continue
		}
		if err := c.copyFile(srcPath, dstPath, entry.Mode().Perm()); err != nil {
			return err
		}
		c.result.Files = append(c.result.Files, c.rel(dstPath))
	}
	return nil
}

func (c *copier) copyFile(srcPath, dstPath string, perm os.FileMode) error {
	in, err := c.src.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer in.Close()

	if err := c.dst.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dstPath), err)
	}

	if perm == 0 {
		perm = 0o644
	}
	out, err := c.dst.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dstPath, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dstPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dstPath, err)
	}
	return nil
}

func (c *copier) rel(p string) string {
	rel, err := filepath.Rel(c.dstRoot, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// IsEmptyDir reports whether dir has no entries. A directory that cannot be
// read is treated as empty; the caller has just created it.
func IsEmptyDir(fs afero.Fs, dir string) bool {
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return true
	}
	return empty
}
