// Package project recognises KiCad project files and directories.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ProjectExt   = ".kicad_pro"
	PCBExt       = ".kicad_pcb"
	SchematicExt = ".kicad_sch"
)

// Validation failure reasons, shown to the user as-is.
const (
	ErrPathNotFound   = "Path does not exist"
	ErrNoProjectInDir = "No KiCad project file found in directory"
	ErrNotAProject    = "Not a valid KiCad project file or directory"
)

// Info describes a resolved project. Missing sibling files are empty.
type Info struct {
	ProjectPath   string `json:"project_path"`
	ProjectDir    string `json:"project_dir"`
	ProjectName   string `json:"project_name"`
	PCBPath       string `json:"pcb_path"`
	SchematicPath string `json:"schematic_path"`
	GitBranch     string `json:"git_branch,omitempty"`
	GitDirty      bool   `json:"git_dirty,omitempty"`
}

// Result is the outcome of Validate. Exactly one of Info and Error is set.
type Result struct {
	Valid bool   `json:"valid"`
	Info  *Info  `json:"info,omitempty"`
	Error string `json:"error,omitempty"`
}

func invalid(reason string) Result {
	return Result{Error: reason}
}

// Validate accepts a .kicad_pro file or a directory holding one. When a
// directory has several project files the first in lexicographic order wins.
func Validate(path string) Result {
	abs, err := filepath.Abs(path)
	if err != nil {
		return invalid(err.Error())
	}

	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return invalid(ErrPathNotFound)
		}
		return invalid(err.Error())
	}

	var proFile, dir string
	switch {
	case !fi.IsDir() && filepath.Ext(abs) == ProjectExt:
		proFile, dir = abs, filepath.Dir(abs)
	case fi.IsDir():
		proFile = FindFile(abs, ProjectExt)
		if proFile == "" {
			return invalid(ErrNoProjectInDir)
		}
		dir = abs
	default:
		return invalid(ErrNotAProject)
	}

	info := &Info{
		ProjectPath:   proFile,
		ProjectDir:    dir,
		ProjectName:   Stem(proFile),
		PCBPath:       FindFile(dir, PCBExt),
		SchematicPath: FindFile(dir, SchematicExt),
	}
	info.GitBranch, info.GitDirty = gitStatus(dir)
	return Result{Valid: true, Info: info}
}

// FindFile returns the first regular file in dir with extension ext, in
// lexicographic order, or "".
func FindFile(dir, ext string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0])
}

// Stem is the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resolve maps a project file or directory to its directory and name without
// requiring a .kicad_pro to exist.
func Resolve(path string) (dir, name string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		if pro := FindFile(abs, ProjectExt); pro != "" {
			return abs, Stem(pro)
		}
		return abs, filepath.Base(abs)
	}
	return filepath.Dir(abs), Stem(abs)
}
