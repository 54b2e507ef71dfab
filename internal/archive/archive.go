// Package archive implements spec §4.5 (client-side zip staging around a
// scoped temp file) and the server-side extraction tail that the upload
// coordinator's shouldExtract path hands off to. The zip container format
// itself is explicitly out of the core spec's scope (spec §1); this package
// only orchestrates the stdlib codec's lifecycle.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WithZip builds a zip of sourceDir (excluding any path matching an
// exclude glob, relative to sourceDir, dotfiles included by default),
// invokes consume with its path, and removes the file on every exit path —
// success, failure, or panic.
func WithZip(sourceDir, env string, exclude []string, nowMillis int64, consume func(path string) error) (err error) {
	zipPath := filepath.Join(os.TempDir(), fmt.Sprintf("deploy-%s-%d.zip", env, nowMillis))

	defer func() {
		removeErr := os.Remove(zipPath)
		if r := recover(); r != nil {
			os.Remove(zipPath)
			panic(r)
		}
		if err == nil && removeErr != nil && !os.IsNotExist(removeErr) {
			err = removeErr
		}
	}()

	if err = writeZip(sourceDir, zipPath, exclude); err != nil {
		return err
	}
	return consume(zipPath)
}

func writeZip(sourceDir, zipPath string, exclude []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("archive: create zip: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(sourceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == sourceDir {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(rel, exclude) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

// matchesAny reports whether rel matches any glob in patterns, checked both
// against the full relative path and against each path segment so a
// pattern like "*.log" or "node_modules" excludes nested matches too.
func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		for _, segment := range strings.Split(rel, "/") {
			if ok, _ := filepath.Match(pattern, segment); ok {
				return true
			}
		}
	}
	return false
}

// Extract unpacks zipPath into destDir, creating it if needed. Used
// server-side when an upload task's shouldExtract flag is set.
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("archive: open zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: create dest dir: %w", err)
	}

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) && target != filepath.Clean(destDir) {
			return fmt.Errorf("archive: illegal file path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// NowMillis is a thin seam so callers can stamp a deterministic timestamp
// in tests; production call sites pass time.Now().UnixMilli().
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
