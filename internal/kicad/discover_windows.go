//go:build windows

package kicad

import (
	"fmt"
	"path/filepath"
)

// Discover returns speculative named-pipe paths: api.sock followed by
// api-1.sock .. api-9.sock. Each is probed and absent ones drop out.
func Discover(dir string) ([]string, error) {
	sockets := make([]string, 0, MaxWindowsInstances)
	sockets = append(sockets, filepath.Join(dir, primarySocket))
	for i := 1; i < MaxWindowsInstances; i++ {
		sockets = append(sockets, filepath.Join(dir, fmt.Sprintf("api-%d.sock", i)))
	}
	return sockets, nil
}
