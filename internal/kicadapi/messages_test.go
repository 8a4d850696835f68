package kicadapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

// encodeResponse builds an ApiResponse the way KiCad does.
func encodeResponse(token string, status StatusCode, errMsg, typeName string, payload []byte) []byte {
	var hdr, st, b []byte
	hdr = appendString(hdr, 1, token)
	st = appendVarint(st, 1, uint64(status))
	st = appendString(st, 2, errMsg)
	b = appendBytes(b, 1, hdr)
	b = appendBytes(b, 2, st)
	if typeName != "" {
		b = appendAny(b, 3, typeName, payload)
	}
	return b
}

func encodeVersion(v Version) []byte {
	var inner []byte
	inner = appendVarint(inner, 1, uint64(v.Major))
	inner = appendVarint(inner, 2, uint64(v.Minor))
	inner = appendVarint(inner, 3, uint64(v.Patch))
	inner = appendString(inner, 4, v.Full)
	return appendBytes(nil, 1, inner)
}

func encodeDocuments(docs ...Document) []byte {
	var b []byte
	for _, d := range docs {
		var proj, inner []byte
		proj = appendString(proj, 1, d.Project.Name)
		proj = appendString(proj, 2, d.Project.Path)
		inner = appendVarint(inner, 1, uint64(d.Type))
		inner = appendString(inner, 3, d.BoardFilename)
		inner = appendBytes(inner, 4, proj)
		b = appendBytes(b, 1, inner)
	}
	return b
}

func TestEncodeRequest(t *testing.T) {
	raw := encodeRequest("tok", "kiassist-probe", msgGetOpenDocuments, encodeGetOpenDocuments(DocTypePCB))

	fields, err := parseFields(raw)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	hdr, err := parseFields(fields[0].bytes)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(hdr[0].bytes))
	assert.Equal(t, "kiassist-probe", string(hdr[1].bytes))

	typeName, payload, err := parseAny(fields[1].bytes)
	require.NoError(t, err)
	assert.Equal(t, msgGetOpenDocuments, typeName)

	body, err := parseFields(payload)
	require.NoError(t, err)
	require.Len(t, body, 1)
	assert.Equal(t, uint64(DocTypePCB), body[0].varint)
}

func TestDecodeResponse(t *testing.T) {
	raw := encodeResponse("abc", StatusOK, "", msgGetVersionResponse,
		encodeVersion(Version{Major: 9, Minor: 0, Patch: 2, Full: "9.0.2"}))

	resp, err := decodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.token)
	assert.Equal(t, StatusOK, resp.status)
	assert.Equal(t, msgGetVersionResponse, resp.typeName)

	v, err := decodeVersion(resp.payload)
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 9, Minor: 0, Patch: 2, Full: "9.0.2"}, v)
	assert.Equal(t, "9.0.2", v.String())
}

func TestDecodeResponse_SkipsUnknownWireTypes(t *testing.T) {
	raw := encodeResponse("", StatusBusy, "busy", "", nil)
	raw = protowire.AppendTag(raw, 9, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 42)

	resp, err := decodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, StatusBusy, resp.status)
	assert.Equal(t, "busy", resp.errMsg)
}

func TestDecodeResponse_Truncated(t *testing.T) {
	raw := encodeResponse("abc", StatusOK, "", msgGetVersionResponse, encodeVersion(Version{Major: 8}))
	_, err := decodeResponse(raw[:len(raw)-2])
	assert.Error(t, err)
}

func TestDecodeOpenDocuments(t *testing.T) {
	raw := encodeDocuments(
		Document{Type: DocTypePCB, BoardFilename: "board.kicad_pcb", Project: Project{Name: "board", Path: "/work/board"}},
		Document{Type: DocTypePCB, BoardFilename: "/abs/other.kicad_pcb"},
	)

	docs, err := decodeOpenDocuments(raw)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "board", docs[0].Project.Name)
	assert.Equal(t, "/work/board", docs[0].Project.Path)
	assert.Equal(t, "/work/board/board.kicad_pcb", docs[0].Path())
	assert.Equal(t, "/abs/other.kicad_pcb", docs[1].Path())
}

func TestVersionString_NoFull(t *testing.T) {
	assert.Equal(t, "8.0.1", Version{Major: 8, Patch: 1}.String())
}
