// Package storage persists imported asset binaries on local disk and renders
// their public URLs.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore writes asset binaries below a base directory, optionally inside a
// configured sub-directory, and maps stored URIs to public URLs.
type DiskStore struct {
	baseDir string
	subdir  string
	baseURL string
}

// NewDiskStore creates the store and its target directory. subdir may be
// empty to store files directly in baseDir.
func NewDiskStore(baseDir, subdir, baseURL string) (*DiskStore, error) {
	dir := baseDir
	if subdir != "" {
		dir = filepath.Join(baseDir, subdir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}

	return &DiskStore{
		baseDir: baseDir,
		subdir:  subdir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes data under the desired name, picking a collision-safe variant
// (name_0.ext, name_1.ext, ...) when the name is taken. It returns the
// stored URI, relative to the store root.
func (s *DiskStore) Save(data []byte, desiredName string) (string, error) {
	if desiredName == "" {
		desiredName = "file"
	}

	name := desiredName
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; ; i++ {
		if _, err := os.Stat(s.path(name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}

	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}

	uri := name
	if s.subdir != "" {
		uri = path.Join(s.subdir, name)
	}
	return uri, nil
}

// Delete removes a previously stored binary. A missing file is not an error:
// the point of deleting is making room for a re-import.
func (s *DiskStore) Delete(uri string) error {
	p := filepath.Join(s.baseDir, filepath.FromSlash(uri))
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", uri, err)
	}
	return nil
}

// URL renders the public URL for a stored URI.
func (s *DiskStore) URL(uri string) string {
	return s.baseURL + "/" + uri
}

// BaseDir returns the store's root directory.
func (s *DiskStore) BaseDir() string {
	return s.baseDir
}

func (s *DiskStore) path(name string) string {
	if s.subdir != "" {
		return filepath.Join(s.baseDir, s.subdir, name)
	}
	return filepath.Join(s.baseDir, name)
}
