//go:build unix

package daemon

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// listenUnix binds an owner-only unix socket at path, clearing a stale
// socket from an earlier run.
func listenUnix(path string) (net.Listener, error) {
	if err := mkdirPrivate(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to prepare socket directory: %w", err)
	}
	if err := removeSocket(path); err != nil {
		return nil, err
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	return l, nil
}

// removeSocket deletes path only if it is a socket.
func removeSocket(path string) error {
	fi, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("refusing to remove non-socket path: %s", path)
	}
	return os.Remove(path)
}
