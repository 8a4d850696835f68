//go:build !windows

package kicad

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchSettle coalesces bursts of socket events (KiCad removes and recreates
// its socket on restart).
const watchSettle = 250 * time.Millisecond

// Watch calls onChange with a fresh detection immediately and again whenever
// a socket appears in or disappears from the socket directory. It returns when
// ctx is done.
func (d *Detector) Watch(ctx context.Context, onChange func([]Instance)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	dir := d.SocketDir()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	onChange(d.Detect())

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsSocketName(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			d.logger.Debug("socket change", zap.String("event", ev.String()))
			settle = time.After(watchSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", zap.Error(err))
		case <-settle:
			settle = nil
			onChange(d.Detect())
		}
	}
}
