// Package credential resolves and persists the Gemini API key.
//
// Lookup order is environment, memory cache, OS keyring, then a JSON file in
// the user's home directory. Every persistence step is best-effort: a key that
// was set is always readable for the lifetime of the process.
package credential

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/logging"
	"github.com/kiassist/kiassist/internal/paths"
)

const (
	ServiceName = "KiAssist"
	KeyName     = "gemini_api_key"
	EnvVar      = "GEMINI_API_KEY"

	apiKeyField = "api_key"
	probeKey    = "__kiassist_test__"
	probeValue  = "test"

	// MemoryOnlyWarning is returned by Set when neither the keyring nor the
	// file accepted the key.
	MemoryOnlyWarning = "API key saved to memory only. It will not persist after restart."
)

// ErrEmptySecret is returned by Set for empty or whitespace-only input.
var ErrEmptySecret = errors.New("API key cannot be empty")

// Origin records where the current key came from.
type Origin string

const (
	OriginNone        Origin = ""
	OriginEnvironment Origin = "environment"
	OriginMemory      Origin = "memory"
	OriginKeyring     Origin = "keyring"
	OriginFile        Origin = "file"
)

// Options configures a Resolver. Zero values select the system defaults.
type Options struct {
	Keyring  Keyring
	FilePath string
	Getenv   func(string) string
	Logger   *zap.Logger
}

type Resolver struct {
	mu      sync.Mutex
	keyring Keyring
	file    fileStore
	getenv  func(string) string
	logger  *zap.Logger

	memory       string
	memoryOrigin Origin

	// nil until the first probe
	keyringOK *bool
}

func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		keyring: opts.Keyring,
		file:    fileStore{path: opts.FilePath},
		getenv:  opts.Getenv,
		logger:  logging.OrNop(opts.Logger),
	}
	if r.keyring == nil {
		r.keyring = SystemKeyring{}
	}
	if r.file.path == "" {
		r.file.path = paths.DefaultCredentialPath()
	}
	if r.getenv == nil {
		r.getenv = os.Getenv
	}
	return r
}

// Get returns the API key and whether one was found.
func (r *Resolver) Get() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, _ := r.resolveNoLock()
	return key, key != ""
}

// Has reports whether any source provides a key.
func (r *Resolver) Has() bool {
	_, ok := r.Get()
	return ok
}

// Origin reports which source the key currently resolves from.
func (r *Resolver) Origin() Origin {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, origin := r.resolveNoLock()
	return origin
}

func (r *Resolver) resolveNoLock() (string, Origin) {
	if key := r.getenv(EnvVar); key != "" {
		return key, OriginEnvironment
	}
	if r.memory != "" {
		return r.memory, r.memoryOrigin
	}

	if r.keyringAvailableNoLock() {
		key, err := r.keyring.Get(ServiceName, KeyName)
		switch {
		case err == nil && key != "":
			r.memory, r.memoryOrigin = key, OriginKeyring
			return key, OriginKeyring
		case err != nil && !isNotFound(err):
			r.logger.Warn("keyring lookup failed, falling back to file", zap.Error(err))
		}
	}

	key, err := r.file.load()
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("credential file unreadable", zap.String("path", r.file.path), zap.Error(err))
		}
		return "", OriginNone
	}
	if key == "" {
		return "", OriginNone
	}
	r.memory, r.memoryOrigin = key, OriginFile
	return key, OriginFile
}

// Set stores secret. The key is usable immediately even if it could not be
// persisted; in that case warning is MemoryOnlyWarning.
func (r *Resolver) Set(secret string) (warning string, err error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrEmptySecret
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.memory, r.memoryOrigin = secret, OriginMemory

	if r.keyringAvailableNoLock() {
		err := r.keyring.Set(ServiceName, KeyName, secret)
		if err == nil {
			r.memoryOrigin = OriginKeyring
			r.logger.Info("api key stored in keyring", logging.Secret("key", secret))
			return "", nil
		}
		r.logger.Warn("keyring write failed, falling back to file", zap.Error(err))
	}

	if err := r.file.save(secret); err != nil {
		r.logger.Warn("credential file write failed", zap.String("path", r.file.path), zap.Error(err))
		return MemoryOnlyWarning, nil
	}
	r.memoryOrigin = OriginFile
	r.logger.Info("api key stored in file", zap.String("path", r.file.path), logging.Secret("key", secret))
	return "", nil
}

// Clear forgets the key everywhere it can. Errors are logged, never returned.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memory, r.memoryOrigin = "", OriginNone

	if r.keyringAvailableNoLock() {
		if err := r.keyring.Delete(ServiceName, KeyName); err != nil && !isNotFound(err) {
			r.logger.Debug("keyring delete failed", zap.Error(err))
		}
	}
	if err := r.file.remove(); err != nil {
		r.logger.Debug("credential file clear failed", zap.Error(err))
	}
}

// keyringAvailableNoLock probes the backend with a throwaway entry once and
// memoises the answer for the resolver's lifetime.
func (r *Resolver) keyringAvailableNoLock() bool {
	if r.keyringOK != nil {
		return *r.keyringOK
	}

	ok := func() (ok bool) {
		defer func() {
			// Some backends panic when no session bus is reachable
			if p := recover(); p != nil {
				ok = false
			}
		}()
		if err := r.keyring.Set(ServiceName, probeKey, probeValue); err != nil {
			r.logger.Debug("keyring unavailable", zap.Error(err))
			return false
		}
		got, err := r.keyring.Get(ServiceName, probeKey)
		_ = r.keyring.Delete(ServiceName, probeKey)
		return err == nil && got == probeValue
	}()

	r.keyringOK = &ok
	return ok
}

func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
