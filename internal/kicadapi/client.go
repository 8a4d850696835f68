// Package kicadapi is a minimal client for KiCad's IPC API: NNG request/reply
// over an ipc:// endpoint carrying kiapi.common.ApiRequest envelopes.
package kicadapi

import (
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/req"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
)

// DefaultTimeout bounds every send and receive.
const DefaultTimeout = 5 * time.Second

// Client is one connection to a running KiCad instance. It is safe for
// concurrent use; requests are serialised.
type Client struct {
	mu         sync.Mutex
	sock       mangos.Socket
	uri        string
	clientName string
	token      string
}

// Dial connects to uri (ipc://...). Dialing is synchronous so a stale socket
// fails here rather than on the first request.
func Dial(uri, clientName string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sock, err := req.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create req socket: %w", err)
	}
	for opt, val := range map[string]any{
		mangos.OptionSendDeadline: timeout,
		mangos.OptionRecvDeadline: timeout,
		mangos.OptionDialAsynch:   false,
	} {
		if err := sock.SetOption(opt, val); err != nil {
			_ = sock.Close()
			return nil, fmt.Errorf("failed to set %s: %w", opt, err)
		}
	}
	if err := sock.Dial(uri); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", uri, err)
	}
	return &Client{sock: sock, uri: uri, clientName: clientName}, nil
}

func (c *Client) Close() error {
	return c.sock.Close()
}

// call sends one request and returns the payload of the expected response
// type. The kicad_token from the first response is echoed afterwards.
func (c *Client) call(typeName string, payload []byte, wantType string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sock.Send(encodeRequest(c.token, c.clientName, typeName, payload)); err != nil {
		return nil, fmt.Errorf("send %s: %w", typeName, err)
	}
	raw, err := c.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("recv %s: %w", typeName, err)
	}

	resp, err := decodeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", typeName, err)
	}
	if c.token == "" && resp.token != "" {
		c.token = resp.token
	}
	if resp.status != StatusOK {
		return nil, &APIError{Code: resp.status, Message: resp.errMsg}
	}
	if resp.typeName != wantType {
		return nil, fmt.Errorf("unexpected response type %q (want %q)", resp.typeName, wantType)
	}
	return resp.payload, nil
}

// GetVersion returns the version of the connected KiCad.
func (c *Client) GetVersion() (Version, error) {
	payload, err := c.call(msgGetVersion, nil, msgGetVersionResponse)
	if err != nil {
		return Version{}, err
	}
	return decodeVersion(payload)
}

// GetOpenDocuments lists open documents of type t.
func (c *Client) GetOpenDocuments(t DocumentType) ([]Document, error) {
	payload, err := c.call(msgGetOpenDocuments, encodeGetOpenDocuments(t), msgGetOpenDocumentsResponse)
	if err != nil {
		return nil, err
	}
	return decodeOpenDocuments(payload)
}
