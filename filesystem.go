package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

type walkFunc func(string, *IgnoreSet) ([]string, error)

// IgnoreSet holds the configured ignore entries. Membership is tested against
// the full path of each entry walked, while configs usually list bare names,
// so in practice a hit is rare and a hit is only logged. EnforceIgnores flips
// on enforced mode, which actually skips matched entries.
type IgnoreSet struct {
	paths    map[string]struct{}
	enforced bool
}

func NewIgnoreSet(paths []string, enforced bool) *IgnoreSet {
	pathSet := make(map[string]struct{}, len(paths))
	for _, ignorePath := range paths {
		pathSet[ignorePath] = struct{}{}
	}

	return &IgnoreSet{paths: pathSet, enforced: enforced}
}

func (s *IgnoreSet) Matches(path string) bool {
	_, ok := s.paths[path]
	return ok
}

func (s *IgnoreSet) Enforced() bool {
	return s.enforced
}

// walkDirectory recursively collects the absolute paths of every file under
// dirPath. Directories are flattened away, only files come back.
func walkDirectory(dirPath string, ignore *IgnoreSet) ([]string, error) {
	entries, readErr := os.ReadDir(dirPath)
	if readErr != nil {
		return nil, &FilesystemError{Path: dirPath, Err: readErr}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())
		if ignore.Matches(fullPath) {
			log.Info(fmt.Sprintf("%s is on the ignore list", fullPath))
			if ignore.Enforced() {
				continue
			}
		}
		info, statErr := entry.Info()
		if statErr != nil {
			return nil, &FilesystemError{Path: fullPath, Err: statErr}
		}
		if info.IsDir() {
			subFiles, subErr := walkDirectory(fullPath, ignore)
			if subErr != nil {
				return nil, subErr
			}
			files = append(files, subFiles...)
		} else {
			files = append(files, fullPath)
		}
	}

	return files, nil
}
