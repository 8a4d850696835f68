package kicad

import "strings"

const (
	primarySocket = "api.sock"

	// MaxWindowsInstances is how many named-pipe candidates are synthesized
	// where the pipe namespace cannot be listed.
	MaxWindowsInstances = 10
)

// IsSocketName reports whether name is api.sock or api-<digits>.sock.
func IsSocketName(name string) bool {
	if name == primarySocket {
		return true
	}
	if !strings.HasPrefix(name, "api-") || !strings.HasSuffix(name, ".sock") {
		return false
	}
	mid := name[len("api-") : len(name)-len(".sock")]
	if mid == "" {
		return false
	}
	for _, r := range mid {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PathToURI converts a socket path to the connection string KiCad expects.
func PathToURI(path string) string {
	return "ipc://" + path
}
