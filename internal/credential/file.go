package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore keeps the key in a small JSON document. Unknown top-level keys
// are preserved across writes.
type fileStore struct {
	path string
}

func (f fileStore) read() (map[string]any, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (f fileStore) load() (string, error) {
	doc, err := f.read()
	if err != nil {
		return "", err
	}
	key, _ := doc[apiKeyField].(string)
	return key, nil
}

func (f fileStore) save(secret string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	doc, err := f.read()
	if err != nil {
		// Missing or corrupt: start fresh
		doc = map[string]any{}
	}
	doc[apiKeyField] = secret
	return f.write(doc)
}

func (f fileStore) remove() error {
	doc, err := f.read()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, ok := doc[apiKeyField]; !ok {
		return nil
	}
	delete(doc, apiKeyField)
	return f.write(doc)
}

func (f fileStore) write(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential file: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	_ = os.Chmod(f.path, 0o600)
	return nil
}
