package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BlobHash is the git blob digest of content: sha1("blob <len>\x00" + data).
// The remote tree API reports blob SHAs, so hashing local files the same way
// lets a tree listing prove a file unchanged without downloading it.
func BlobHash(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d", len(data))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashFile returns the blob hash and size of the file at path.
func HashFile(path string) (string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}

	return BlobHash(data), int64(len(data)), nil
}

// AtomicWrite writes data to dst via a temp file and rename, so a crash
// mid-write never leaves a partially written file.
func AtomicWrite(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".rulesync-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename: %w", err)
	}

	return nil
}

func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// BackupPath names the backup written next to a conflicted file before it is
// overwritten. Backups are never auto-deleted.
func BackupPath(path string, now time.Time) string {
	return fmt.Sprintf("%s.backup.%d", path, now.UnixMilli())
}
