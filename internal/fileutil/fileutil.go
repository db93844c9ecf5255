// Package fileutil writes and exports deal note files.
package fileutil

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, creating the parent directory when needed.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// CopyFileVerified copies src to dst through WriteFileAtomic and then reads
// dst back, removing it when its SHA-256 differs from the source.
func CopyFileVerified(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := WriteFileAtomic(dst, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write copy: %w", err)
	}
	written, err := os.ReadFile(dst)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	if sha256.Sum256(written) != sha256.Sum256(data) {
		_ = os.Remove(dst)
		return fmt.Errorf("verify copy: %s differs from %s", dst, src)
	}
	return nil
}
