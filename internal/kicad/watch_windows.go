//go:build windows

package kicad

import (
	"context"
	"errors"
)

// Watch is not available for named pipes; the caller gets one detection and
// an error.
func (d *Detector) Watch(ctx context.Context, onChange func([]Instance)) error {
	onChange(d.Detect())
	return errors.New("watching for KiCad instances is not supported on Windows")
}
