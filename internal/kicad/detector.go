// Package kicad finds running KiCad instances through their IPC sockets and
// reports which project each one has open.
package kicad

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/kicadapi"
	"github.com/kiassist/kiassist/internal/logging"
	"github.com/kiassist/kiassist/internal/paths"
)

const (
	// ClientName identifies probe connections to KiCad.
	ClientName = "kiassist-probe"

	// ProbeTimeout bounds each probe's requests.
	ProbeTimeout = 5000 * time.Millisecond

	UnknownVersion = "Unknown"
	productName    = "KiCad"

	pcbExt       = ".kicad_pcb"
	schematicExt = ".kicad_sch"
)

// Instance describes a KiCad instance that answered a probe. Unknown fields
// are empty.
type Instance struct {
	SocketPath    string `json:"socket_path"`
	ProjectName   string `json:"project_name"`
	DisplayName   string `json:"display_name"`
	Version       string `json:"version"`
	ProjectPath   string `json:"project_path"`
	PCBPath       string `json:"pcb_path"`
	SchematicPath string `json:"schematic_path"`
}

// Conn is the part of the KiCad API a probe uses.
type Conn interface {
	GetVersion() (kicadapi.Version, error)
	GetOpenDocuments(kicadapi.DocumentType) ([]kicadapi.Document, error)
	Close() error
}

// DialFunc opens a Conn to uri.
type DialFunc func(uri, clientName string, timeout time.Duration) (Conn, error)

func dialAPI(uri, clientName string, timeout time.Duration) (Conn, error) {
	c, err := kicadapi.Dial(uri, clientName, timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Options configures a Detector. Zero values select the defaults.
type Options struct {
	SocketDir string
	Timeout   time.Duration
	Dial      DialFunc
	Logger    *zap.Logger
}

type Detector struct {
	socketDir string
	timeout   time.Duration
	dial      DialFunc
	logger    *zap.Logger
}

func NewDetector(opts Options) *Detector {
	d := &Detector{
		socketDir: opts.SocketDir,
		timeout:   opts.Timeout,
		dial:      opts.Dial,
		logger:    logging.OrNop(opts.Logger),
	}
	if d.timeout <= 0 {
		d.timeout = ProbeTimeout
	}
	if d.dial == nil {
		d.dial = dialAPI
	}
	return d
}

// SocketDir is the configured directory, or the platform default resolved
// at call time.
func (d *Detector) SocketDir() string {
	if d.socketDir != "" {
		return d.socketDir
	}
	return paths.KiCadSocketDir()
}

// Sockets lists candidate socket paths. Scan errors are logged and yield an
// empty list.
func (d *Detector) Sockets() []string {
	sockets, err := Discover(d.SocketDir())
	if err != nil {
		d.logger.Warn("socket discovery failed", zap.String("dir", d.SocketDir()), zap.Error(err))
		return nil
	}
	return sockets
}

// Probe connects to uri and collects instance metadata. Any failure means the
// instance is absent; stale sockets are normal during discovery.
func (d *Detector) Probe(uri string) (*Instance, bool) {
	conn, err := d.dial(uri, ClientName, d.timeout)
	if err != nil {
		d.logger.Debug("probe failed", zap.String("uri", uri), zap.Error(err))
		return nil, false
	}
	defer conn.Close()

	inst := &Instance{SocketPath: uri, Version: UnknownVersion}
	if v, err := conn.GetVersion(); err == nil {
		inst.Version = v.String()
	} else {
		d.logger.Debug("version unavailable", zap.String("uri", uri), zap.Error(err))
	}

	var projectPath, projectName string
	adopt := func(doc kicadapi.Document) {
		if projectPath != "" || projectName != "" {
			return
		}
		projectPath = doc.Project.Path
		projectName = stem(projectPath)
		if projectName == "" {
			projectName = doc.Project.Name
		}
	}

	if docs, err := conn.GetOpenDocuments(kicadapi.DocTypePCB); err != nil {
		d.logger.Debug("could not list pcb documents", zap.String("uri", uri), zap.Error(err))
	} else if len(docs) > 0 {
		adopt(docs[0])
		inst.PCBPath = docs[0].Path()
	}

	if docs, err := conn.GetOpenDocuments(kicadapi.DocTypeSchematic); err != nil {
		d.logger.Debug("could not list schematic documents", zap.String("uri", uri), zap.Error(err))
	} else if len(docs) > 0 {
		adopt(docs[0])
		inst.SchematicPath = docs[0].Path()
	}

	if projectPath != "" && (inst.PCBPath == "" || inst.SchematicPath == "") {
		fillFromProjectDir(inst, projectPath, projectName)
	}

	inst.ProjectPath = projectPath
	inst.ProjectName = projectName
	if projectName != "" {
		inst.DisplayName = projectName
	} else {
		inst.DisplayName = productName + " " + inst.Version
	}
	return inst, true
}

// fillFromProjectDir globs the project directory for files KiCad did not
// report, preferring the schematic named after the project.
func fillFromProjectDir(inst *Instance, dir, name string) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return
	}
	if inst.PCBPath == "" {
		if m, _ := filepath.Glob(filepath.Join(dir, "*"+pcbExt)); len(m) > 0 {
			inst.PCBPath = m[0]
		}
	}
	if inst.SchematicPath == "" {
		root := filepath.Join(dir, name+schematicExt)
		if _, err := os.Stat(root); err == nil && name != "" {
			inst.SchematicPath = root
		} else if m, _ := filepath.Glob(filepath.Join(dir, "*"+schematicExt)); len(m) > 0 {
			inst.SchematicPath = m[0]
		}
	}
}

// Detect probes every candidate socket in order and returns the instances
// that answered.
func (d *Detector) Detect() []Instance {
	instances := []Instance{}
	for _, sock := range d.Sockets() {
		if inst, ok := d.Probe(PathToURI(sock)); ok {
			instances = append(instances, *inst)
		}
	}
	d.logger.Debug("detection complete", zap.Int("instances", len(instances)))
	return instances
}

// OpenProjectPaths returns the project paths of all detected instances.
func (d *Detector) OpenProjectPaths() []string {
	var out []string
	for _, inst := range d.Detect() {
		if inst.ProjectPath != "" {
			out = append(out, inst.ProjectPath)
		}
	}
	return out
}

// IsProjectOpen reports whether any running instance has path open.
func (d *Detector) IsProjectOpen(path string) bool {
	want := normalize(path)
	for _, p := range d.OpenProjectPaths() {
		if normalize(p) == want {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func stem(p string) string {
	if p == "" {
		return ""
	}
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
