package kicadapi

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// KiCad's API messages are small and stable, so they are encoded directly
// with protowire instead of generated types.

const typeURLPrefix = "type.googleapis.com/"

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendAny encodes a google.protobuf.Any wrapping payload.
func appendAny(b []byte, num protowire.Number, typeName string, payload []byte) []byte {
	var a []byte
	a = appendString(a, 1, typeURLPrefix+typeName)
	a = appendBytes(a, 2, payload)
	return appendBytes(b, num, a)
}

// field is one decoded top-level field. Only varint and length-delimited
// values are kept; other wire types are skipped.
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("bad varint in field %d: %w", num, protowire.ParseError(n))
			}
			out = append(out, field{num: num, varint: v})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("bad bytes in field %d: %w", num, protowire.ParseError(n))
			}
			out = append(out, field{num: num, bytes: v})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("bad value in field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return out, nil
}

// parseAny returns the unqualified type name and the payload of an Any.
func parseAny(b []byte) (string, []byte, error) {
	fields, err := parseFields(b)
	if err != nil {
		return "", nil, err
	}
	var typeURL string
	var value []byte
	for _, f := range fields {
		switch f.num {
		case 1:
			typeURL = string(f.bytes)
		case 2:
			value = f.bytes
		}
	}
	if i := strings.LastIndex(typeURL, "/"); i >= 0 {
		typeURL = typeURL[i+1:]
	}
	return typeURL, value, nil
}
