//go:build !windows

package kicad

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover lists socket files in dir, sorted by name. Sorting is
// lexicographic, so api-10.sock comes before api-2.sock; callers must not
// read PID order into it. A missing directory yields no sockets.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan socket directory: %w", err)
	}

	var sockets []string
	for _, e := range entries {
		if !IsSocketName(e.Name()) {
			continue
		}
		mode := e.Type()
		if !mode.IsRegular() && mode&os.ModeSocket == 0 {
			continue
		}
		sockets = append(sockets, filepath.Join(dir, e.Name()))
	}
	sort.Strings(sockets)
	return sockets, nil
}
