package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rulesync/internal/util"
)

// LocalFile is one file observed on disk during a scan.
type LocalFile struct {
	Hash string
	Size int64
}

// ScanLocal walks the rules directory and fingerprints every file selected
// by the include/exclude patterns. A missing directory is an empty tree, not
// an error; nothing has been synced yet.
func ScanLocal(root string, include, exclude []string) (map[string]LocalFile, error) {
	files := make(map[string]LocalFile)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !util.Selected(rel, include, exclude) {
			return nil
		}

		hash, size, err := util.HashFile(path)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", path, err)
		}

		files[rel] = LocalFile{Hash: hash, Size: size}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return files, nil
		}

		return nil, err
	}

	return files, nil
}
