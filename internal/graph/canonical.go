package graph

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON in the RFC 8785 style for
// hashing and golden-trace comparison. This is the only serialization that
// may feed content-addressed identity (behavior source hashes, trace
// snapshots).
//
// Differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are written verbatim)
//  3. Strings are NFC normalized
//  4. Floats use shortest round-trip formatting
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
		return nil
	case Str:
		return marshalCanonicalString(buf, string(val))
	case Num:
		return marshalCanonicalNumber(buf, float64(val))
	case Bool:
		return marshalCanonicalBool(buf, bool(val))
	case ValueMap:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[k] = elem
		}
		return marshalCanonicalObject(buf, m)
	case string:
		return marshalCanonicalString(buf, val)
	case float64:
		return marshalCanonicalNumber(buf, val)
	case float32:
		return marshalCanonicalNumber(buf, float64(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case bool:
		return marshalCanonicalBool(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		return marshalCanonicalObject(buf, val)
	case map[string]ValueMap:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[k] = elem
		}
		return marshalCanonicalObject(buf, m)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalBool(buf *bytes.Buffer, b bool) error {
	if b {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
	return nil
}

// marshalCanonicalNumber writes the shortest decimal form that round-trips.
// Integral values print without exponent or trailing ".0" so that 10.0 and
// 10 hash identically.
func marshalCanonicalNumber(buf *bytes.Buffer, f float64) error {
	if f != f || f > 1.7e308 || f < -1.7e308 {
		return fmt.Errorf("non-finite number is forbidden in canonical JSON: %v", f)
	}
	if f == float64(int64(f)) {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// marshalCanonicalString writes an NFC-normalized JSON string escaping only
// control characters (U+0000..U+001F), backslash, and quote. <, >, &,
// U+2028 and U+2029 are written verbatim.
func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				var tmp [utf8.UTFMax]byte
				n := utf8.EncodeRune(tmp[:], r)
				buf.Write(tmp[:n])
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

func marshalCanonicalObject(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonicalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshalCanonical(buf, m[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareKeysUTF16 compares strings by UTF-16 code units as RFC 8785
// requires. Go's sort.Strings compares UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
