package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kiassist/kiassist/internal/limits"
)

const (
	RequirementsFile = "requirements.md"
	TodoFile         = "todo.md"
)

var (
	ErrProjectDirMissing = errors.New("Project directory does not exist")
	ErrNoRequirements    = errors.New("requirements.md does not exist")
)

// Status reports which wizard documents exist in a project directory.
type Status struct {
	RequirementsExists bool   `json:"requirements_exists"`
	RequirementsPath   string `json:"requirements_path"`
	TodoExists         bool   `json:"todo_exists"`
	TodoPath           string `json:"todo_path"`
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func requireDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return ErrProjectDirMissing
	}
	return nil
}

// CheckRequirements reports on requirements.md and todo.md in dir.
func CheckRequirements(dir string) (Status, error) {
	if err := requireDir(dir); err != nil {
		return Status{}, err
	}
	st := Status{
		RequirementsPath: filepath.Join(dir, RequirementsFile),
		TodoPath:         filepath.Join(dir, TodoFile),
	}
	st.RequirementsExists = exists(st.RequirementsPath)
	st.TodoExists = exists(st.TodoPath)
	return st, nil
}

// ReadRequirements returns the contents of requirements.md in dir.
func ReadRequirements(dir string) (string, error) {
	f, err := os.Open(filepath.Join(dir, RequirementsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoRequirements
		}
		return "", fmt.Errorf("failed to read %s: %w", RequirementsFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limits.Document))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", RequirementsFile, err)
	}
	return string(data), nil
}

// SaveRequirements writes requirements.md, and todo.md when todo is not
// empty, into dir. It returns the paths written.
func SaveRequirements(dir, requirements, todo string) ([]string, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}

	reqPath := filepath.Join(dir, RequirementsFile)
	if err := os.WriteFile(reqPath, []byte(requirements), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", RequirementsFile, err)
	}
	saved := []string{reqPath}

	if todo != "" {
		todoPath := filepath.Join(dir, TodoFile)
		if err := os.WriteFile(todoPath, []byte(todo), 0o644); err != nil {
			return saved, fmt.Errorf("failed to write %s: %w", TodoFile, err)
		}
		saved = append(saved, todoPath)
	}
	return saved, nil
}
