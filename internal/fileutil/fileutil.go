package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// WriteVerified writes data atomically, then reads the file back and compares
// SHA256 digests. The file is removed on mismatch. It returns the hex digest.
func WriteVerified(path string, data []byte, mode os.FileMode) (string, error) {
	want := sha256.Sum256(data)
	if err := WriteAtomic(path, data, mode); err != nil {
		return "", err
	}
	got, size, err := Checksum(path)
	if err != nil {
		return "", fmt.Errorf("verify: %w", err)
	}
	if size != int64(len(data)) {
		_ = os.Remove(path)
		return "", fmt.Errorf("write size mismatch: expected %d bytes, found %d bytes", len(data), size)
	}
	if got != hex.EncodeToString(want[:]) {
		_ = os.Remove(path)
		return "", fmt.Errorf("write hash mismatch: file corrupted on disk")
	}
	return got, nil
}

// Checksum streams path through SHA256 and returns the hex digest and size.
func Checksum(path string) (string, int64, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	hasher := sha256.New()
	n, err := io.Copy(hasher, in)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}
