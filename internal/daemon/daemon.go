//go:build unix

// Package daemon serves the app facade as JSON over HTTP on a unix socket.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/apiclient"
	"github.com/kiassist/kiassist/internal/app"
	"github.com/kiassist/kiassist/internal/logging"
	"github.com/kiassist/kiassist/internal/paths"
)

// ServiceName is reported by /health so a reused pid is not mistaken for us.
const ServiceName = "kiassist"

const (
	stopWait     = 5 * time.Second
	healthWait   = 2 * time.Second
	shutdownWait = 5 * time.Second
)

// Config configures a Daemon. App may be nil for Stop and GetStatus.
type Config struct {
	SocketPath string
	PIDFile    string
	App        *app.App
	Logger     *zap.Logger
}

type Daemon struct {
	socketPath string
	pid        pidFile
	app        *app.App
	logger     *zap.Logger
	client     *apiclient.Client

	started time.Time
}

type HealthResponse struct {
	Status  string  `json:"status"`
	Service string  `json:"service"`
	PID     int     `json:"pid"`
	Uptime  float64 `json:"uptime"`
}

// StatusInfo describes the daemon as seen from another process.
type StatusInfo struct {
	Running    bool
	PID        int
	SocketPath string
	Uptime     time.Duration
	// ErrorMessage is set when the pid is alive but the socket does not answer.
	ErrorMessage string
}

func New(cfg Config) *Daemon {
	if cfg.SocketPath == "" {
		cfg.SocketPath = paths.DefaultSocketPath()
	}
	if cfg.PIDFile == "" {
		cfg.PIDFile = paths.DefaultPIDPath()
	}
	return &Daemon{
		socketPath: cfg.SocketPath,
		pid:        pidFile(cfg.PIDFile),
		app:        cfg.App,
		logger:     logging.OrNop(cfg.Logger),
		client:     apiclient.New(cfg.SocketPath),
		started:    time.Now(),
	}
}

// Run serves until ctx is cancelled or SIGTERM/SIGINT arrives. The socket
// and pid file are removed on return.
func (d *Daemon) Run(ctx context.Context) error {
	if d.app == nil {
		return errors.New("daemon has no app to serve")
	}
	if d.IsRunning() {
		pid, _ := d.pid.read()
		return fmt.Errorf("daemon already running (PID: %d)", pid)
	}

	// The pid file is claimed before the socket is touched so a live
	// daemon's socket is never unlinked.
	if err := d.pid.acquire(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer d.pid.release()

	listener, err := listenUnix(d.socketPath)
	if err != nil {
		return err
	}
	defer func() { _ = removeSocket(d.socketPath) }()
	defer d.client.CloseIdleConnections()

	d.started = time.Now()
	server := &http.Server{
		Handler:     d.Handler(),
		ReadTimeout: 10 * time.Second,
		// model calls can take minutes
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigs)

	served := make(chan error, 1)
	go func() { served <- server.Serve(listener) }()
	d.logger.Info("daemon started", zap.Int("pid", os.Getpid()), zap.String("socket", d.socketPath))

	select {
	case sig := <-sigs:
		d.logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
	case <-ctx.Done():
		d.logger.Info("context done, shutting down")
	case err := <-served:
		if !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		d.logger.Warn("server shutdown error", zap.Error(err))
	}
	return nil
}

// Stop sends SIGTERM to the recorded daemon and waits for it to go away.
func (d *Daemon) Stop() error {
	pid, err := d.pid.read()
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("daemon not running")
		}
		return fmt.Errorf("failed reading pidfile: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		if !d.IsRunning() {
			d.logger.Info("daemon stopped", zap.Int("pid", pid))
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("daemon did not stop gracefully")
}

func (d *Daemon) GetStatus() (*StatusInfo, error) {
	info := &StatusInfo{SocketPath: d.socketPath}

	pid, err := d.pid.read()
	if err != nil {
		return info, nil
	}
	info.PID = pid
	if !processAlive(pid) {
		return info, nil
	}

	health, err := d.health(pid)
	if err != nil {
		info.ErrorMessage = err.Error()
		return info, nil
	}
	info.Running = true
	info.Uptime = time.Duration(health.Uptime * float64(time.Second))
	return info, nil
}

// IsRunning reports whether the recorded pid is alive and answers as us on
// the socket.
func (d *Daemon) IsRunning() bool {
	pid, err := d.pid.read()
	if err != nil || !processAlive(pid) {
		return false
	}
	_, err = d.health(pid)
	return err == nil
}

func (d *Daemon) health(pid int) (*HealthResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), healthWait)
	defer cancel()

	var h HealthResponse
	if err := d.client.GetJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	if h.Service != ServiceName || h.PID != pid {
		return nil, fmt.Errorf("socket %s is served by another process (pid %d)", d.socketPath, h.PID)
	}
	return &h, nil
}
