//go:build unix

package kicadapi

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nanomsg.org/mangos/v3/protocol/rep"
)

// serveFake answers every request with handler's reply until the socket closes.
func serveFake(t *testing.T, handler func(typeName, token string) []byte) string {
	t.Helper()
	uri := "ipc://" + filepath.Join(t.TempDir(), "api.sock")

	srv, err := rep.NewSocket()
	require.NoError(t, err)
	require.NoError(t, srv.Listen(uri))
	t.Cleanup(func() { _ = srv.Close() })

	go func() {
		for {
			msg, err := srv.Recv()
			if err != nil {
				return
			}
			fields, err := parseFields(msg)
			if err != nil || len(fields) < 2 {
				return
			}
			var token string
			if hdr, err := parseFields(fields[0].bytes); err == nil {
				for _, h := range hdr {
					if h.num == 1 {
						token = string(h.bytes)
					}
				}
			}
			typeName, _, _ := parseAny(fields[1].bytes)
			if err := srv.Send(handler(typeName, token)); err != nil {
				return
			}
		}
	}()
	return uri
}

func TestClient_RoundTrip(t *testing.T) {
	var (
		mu         sync.Mutex
		seenTokens []string
	)
	uri := serveFake(t, func(typeName, token string) []byte {
		mu.Lock()
		seenTokens = append(seenTokens, token)
		mu.Unlock()
		switch typeName {
		case msgGetVersion:
			return encodeResponse("session-1", StatusOK, "", msgGetVersionResponse,
				encodeVersion(Version{Major: 9, Full: "9.0.0"}))
		case msgGetOpenDocuments:
			return encodeResponse("session-1", StatusOK, "", msgGetOpenDocumentsResponse,
				encodeDocuments(Document{Type: DocTypePCB, BoardFilename: "x.kicad_pcb", Project: Project{Path: "/p/x"}}))
		}
		return encodeResponse("session-1", StatusUnhandled, "no handler", "", nil)
	})

	c, err := Dial(uri, "kiassist-test", time.Second)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "9.0.0", v.String())

	docs, err := c.GetOpenDocuments(DocTypePCB)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "/p/x/x.kicad_pcb", docs[0].Path())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "session-1"}, seenTokens, "token is echoed after the first reply")
}

func TestClient_StatusError(t *testing.T) {
	uri := serveFake(t, func(string, string) []byte {
		return encodeResponse("", StatusNotReady, "still loading", "", nil)
	})

	c, err := Dial(uri, "kiassist-test", time.Second)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetVersion()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, StatusNotReady, apiErr.Code)
	assert.Contains(t, err.Error(), "still loading")
}

func TestDial_NoListener(t *testing.T) {
	_, err := Dial("ipc://"+filepath.Join(t.TempDir(), "api.sock"), "kiassist-test", 200*time.Millisecond)
	assert.Error(t, err)
}
