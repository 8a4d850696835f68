// Package schematic edits KiCad schematic files in place.
package schematic

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kiassist/kiassist/internal/project"
)

const (
	// DefaultNoteText is used when the caller supplies no text.
	DefaultNoteText = "KiAssist Test Note"

	// Note placement near the top right of an A4 sheet, in mm.
	NoteX    = 250.0
	NoteY    = 20.0
	TextSize = 2.54

	fileVersion = "20231120"
	header      = "(kicad_sch"
)

var (
	ErrNoProjectPath = errors.New("No project path provided. Please open a KiCad project first.")
	ErrNotSchematic  = errors.New("not a KiCad schematic")
)

// Injection describes a successful note injection.
type Injection struct {
	Message       string `json:"message"`
	SchematicPath string `json:"schematic_path"`
	CreatedNew    bool   `json:"created_new"`
}

// FindRoot returns the project's root schematic: <name>.kicad_sch when it
// exists, else the first *.kicad_sch in dir, else "".
func FindRoot(dir, name string) string {
	root := filepath.Join(dir, name+project.SchematicExt)
	if fi, err := os.Stat(root); err == nil && fi.Mode().IsRegular() {
		return root
	}
	return project.FindFile(dir, project.SchematicExt)
}

// InjectNote appends a bold text note to the root schematic of the project at
// projectPath, which may be a .kicad_pro file or its directory. A schematic
// named after the project is created when none exists.
func InjectNote(projectPath, text string) (Injection, error) {
	if strings.TrimSpace(projectPath) == "" {
		return Injection{}, ErrNoProjectPath
	}
	if text == "" {
		text = DefaultNoteText
	}

	dir, name := project.Resolve(projectPath)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return Injection{}, fmt.Errorf("Project directory does not exist: %s", dir)
	}

	path := FindRoot(dir, name)
	created := path == ""
	var src []byte
	if created {
		path = filepath.Join(dir, name+project.SchematicExt)
		src = NewSchematic()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return Injection{}, fmt.Errorf("Failed to modify schematic: %w", err)
		}
		src = data
	}

	out, err := AppendText(src, text, NoteX, NoteY, TextSize, true)
	if err != nil {
		return Injection{}, fmt.Errorf("Failed to modify schematic: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return Injection{}, fmt.Errorf("Failed to modify schematic: %w", err)
	}

	action := "Added"
	if created {
		action = "Created new schematic and added"
	}
	return Injection{
		Message:       fmt.Sprintf("%s test note '%s' to schematic", action, text),
		SchematicPath: path,
		CreatedNew:    created,
	}, nil
}

// NewSchematic returns an empty A4 schematic.
func NewSchematic() []byte {
	var b bytes.Buffer
	b.WriteString("(kicad_sch\n")
	fmt.Fprintf(&b, "\t(version %s)\n", fileVersion)
	b.WriteString("\t(generator \"kiassist\")\n")
	fmt.Fprintf(&b, "\t(uuid %s)\n", Quote(uuid.NewString()))
	b.WriteString("\t(paper \"A4\")\n")
	b.WriteString("\t(lib_symbols)\n")
	b.WriteString("\t(sheet_instances\n\t\t(path \"/\"\n\t\t\t(page \"1\")\n\t\t)\n\t)\n")
	b.WriteString(")\n")
	return b.Bytes()
}

// AppendText inserts a text element into the schematic src, ahead of
// sheet_instances when present and otherwise before the closing paren.
func AppendText(src []byte, text string, x, y, size float64, bold bool) ([]byte, error) {
	trimmed := bytes.TrimSpace(src)
	if !bytes.HasPrefix(trimmed, []byte(header)) || !bytes.HasSuffix(trimmed, []byte(")")) {
		return nil, ErrNotSchematic
	}

	at := bytes.Index(src, []byte("\n\t(sheet_instances"))
	if at >= 0 {
		at++
	} else {
		at = bytes.LastIndexByte(src, ')')
	}

	var el bytes.Buffer
	fmt.Fprintf(&el, "\t(text %s\n", Quote(text))
	el.WriteString("\t\t(exclude_from_sim no)\n")
	fmt.Fprintf(&el, "\t\t(at %s %s 0)\n", num(x), num(y))
	el.WriteString("\t\t(effects\n\t\t\t(font\n")
	fmt.Fprintf(&el, "\t\t\t\t(size %s %s)\n", num(size), num(size))
	if bold {
		el.WriteString("\t\t\t\t(bold yes)\n")
	}
	el.WriteString("\t\t\t)\n\t\t\t(justify left bottom)\n\t\t)\n")
	fmt.Fprintf(&el, "\t\t(uuid %s)\n", Quote(uuid.NewString()))
	el.WriteString("\t)\n")

	out := make([]byte, 0, len(src)+el.Len())
	out = append(out, src[:at]...)
	if at > 0 && src[at-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, el.Bytes()...)
	out = append(out, src[at:]...)
	return out, nil
}

// Quote renders s as an s-expression string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
