package credential

import "github.com/zalando/go-keyring"

// Keyring is the subset of an OS secret store the resolver needs.
type Keyring interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

// SystemKeyring talks to the platform store (Secret Service, macOS Keychain,
// Windows Credential Manager).
type SystemKeyring struct{}

func (SystemKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (SystemKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (SystemKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}
