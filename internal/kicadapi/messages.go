package kicadapi

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentType mirrors kiapi.common.types.DocumentType.
type DocumentType uint64

const (
	DocTypeUnknown      DocumentType = 0
	DocTypeSchematic    DocumentType = 1
	DocTypeSymbol       DocumentType = 2
	DocTypePCB          DocumentType = 3
	DocTypeFootprint    DocumentType = 4
	DocTypeDrawingSheet DocumentType = 5
	DocTypeProject      DocumentType = 6
)

func (t DocumentType) String() string {
	switch t {
	case DocTypeSchematic:
		return "schematic"
	case DocTypeSymbol:
		return "symbol"
	case DocTypePCB:
		return "pcb"
	case DocTypeFootprint:
		return "footprint"
	case DocTypeDrawingSheet:
		return "drawing_sheet"
	case DocTypeProject:
		return "project"
	default:
		return "unknown"
	}
}

// StatusCode mirrors kiapi.common.ApiStatusCode.
type StatusCode uint64

const (
	StatusUnknown       StatusCode = 0
	StatusOK            StatusCode = 1
	StatusTimeout       StatusCode = 2
	StatusBadRequest    StatusCode = 3
	StatusNotReady      StatusCode = 4
	StatusUnhandled     StatusCode = 5
	StatusTokenMismatch StatusCode = 6
	StatusBusy          StatusCode = 7
	StatusUnimplemented StatusCode = 8
)

// APIError is a non-OK status returned by KiCad.
type APIError struct {
	Code    StatusCode
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("kicad api status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("kicad api status %d", e.Code)
}

// Version is kiapi.common.types.KiCadVersion.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
	Full  string
}

func (v Version) String() string {
	if v.Full != "" {
		return v.Full
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Project is kiapi.common.types.ProjectSpecifier.
type Project struct {
	Name string
	Path string
}

// Document is kiapi.common.types.DocumentSpecifier.
type Document struct {
	Type          DocumentType
	BoardFilename string
	Project       Project
}

// Path returns the document's file path when KiCad reported one. Bare file
// names are resolved against the project directory.
func (d Document) Path() string {
	if d.BoardFilename == "" {
		return ""
	}
	if filepath.IsAbs(d.BoardFilename) || d.Project.Path == "" {
		return d.BoardFilename
	}
	return filepath.Join(d.Project.Path, d.BoardFilename)
}

const (
	msgGetVersion               = "kiapi.common.commands.GetVersion"
	msgGetVersionResponse       = "kiapi.common.commands.GetVersionResponse"
	msgGetOpenDocuments         = "kiapi.common.commands.GetOpenDocuments"
	msgGetOpenDocumentsResponse = "kiapi.common.commands.GetOpenDocumentsResponse"
)

// encodeRequest builds a kiapi.common.ApiRequest.
func encodeRequest(token, clientName, typeName string, payload []byte) []byte {
	var header []byte
	header = appendString(header, 1, token)
	header = appendString(header, 2, clientName)

	var b []byte
	b = appendBytes(b, 1, header)
	return appendAny(b, 2, typeName, payload)
}

type response struct {
	token    string
	status   StatusCode
	errMsg   string
	typeName string
	payload  []byte
}

// decodeResponse parses a kiapi.common.ApiResponse.
func decodeResponse(b []byte) (*response, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	resp := &response{}
	for _, f := range fields {
		switch f.num {
		case 1:
			hdr, err := parseFields(f.bytes)
			if err != nil {
				return nil, fmt.Errorf("header: %w", err)
			}
			for _, h := range hdr {
				if h.num == 1 {
					resp.token = string(h.bytes)
				}
			}
		case 2:
			st, err := parseFields(f.bytes)
			if err != nil {
				return nil, fmt.Errorf("status: %w", err)
			}
			for _, s := range st {
				switch s.num {
				case 1:
					resp.status = StatusCode(s.varint)
				case 2:
					resp.errMsg = string(s.bytes)
				}
			}
		case 3:
			resp.typeName, resp.payload, err = parseAny(f.bytes)
			if err != nil {
				return nil, fmt.Errorf("message: %w", err)
			}
		}
	}
	return resp, nil
}

func decodeVersion(b []byte) (Version, error) {
	fields, err := parseFields(b)
	if err != nil {
		return Version{}, err
	}
	var v Version
	for _, f := range fields {
		if f.num != 1 {
			continue
		}
		inner, err := parseFields(f.bytes)
		if err != nil {
			return Version{}, err
		}
		for _, g := range inner {
			switch g.num {
			case 1:
				v.Major = uint32(g.varint)
			case 2:
				v.Minor = uint32(g.varint)
			case 3:
				v.Patch = uint32(g.varint)
			case 4:
				v.Full = strings.TrimSpace(string(g.bytes))
			}
		}
	}
	return v, nil
}

func encodeGetOpenDocuments(t DocumentType) []byte {
	return appendVarint(nil, 1, uint64(t))
}

func decodeOpenDocuments(b []byte) ([]Document, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	var docs []Document
	for _, f := range fields {
		if f.num != 1 {
			continue
		}
		inner, err := parseFields(f.bytes)
		if err != nil {
			return nil, err
		}
		var d Document
		for _, g := range inner {
			switch g.num {
			case 1:
				d.Type = DocumentType(g.varint)
			case 3:
				d.BoardFilename = string(g.bytes)
			case 4:
				proj, err := parseFields(g.bytes)
				if err != nil {
					return nil, err
				}
				for _, p := range proj {
					switch p.num {
					case 1:
						d.Project.Name = string(p.bytes)
					case 2:
						d.Project.Path = string(p.bytes)
					}
				}
			}
		}
		docs = append(docs, d)
	}
	return docs, nil
}
