//go:build unix

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// pidFile records the serving process. Creation is exclusive so two daemons
// cannot both claim the socket.
type pidFile string

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// acquire writes our pid, replacing a file left by a dead process.
func (p pidFile) acquire() error {
	pid := os.Getpid()
	if err := mkdirPrivate(filepath.Dir(string(p))); err != nil {
		return err
	}

	for {
		f, err := os.OpenFile(string(p), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(pid))
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			return werr
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}
		if old, rerr := p.read(); rerr == nil && old != pid && processAlive(old) {
			return fmt.Errorf("daemon already running (PID: %d)", old)
		}
		if err := os.Remove(string(p)); err != nil {
			return fmt.Errorf("stale pidfile exists and cannot remove: %w", err)
		}
	}
}

func (p pidFile) release() {
	_ = os.Remove(string(p))
}

// processAlive sends signal 0, which checks existence without delivering.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// mkdirPrivate creates dir owner-only and tightens it if it already existed.
func mkdirPrivate(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	_ = os.Chmod(dir, 0o700)
	return nil
}
