package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const referencesKey = "outbounds"

// RawEntry is one element of the entry list, kept as its original JSON bytes.
type RawEntry struct {
	raw []byte
}

// NewRawEntry encodes v without HTML escaping.
func NewRawEntry(v any) (RawEntry, error) {
	b, err := marshal(v)
	if err != nil {
		return RawEntry{}, err
	}
	if !gjson.ParseBytes(b).IsObject() {
		return RawEntry{}, fmt.Errorf("entry must encode to a JSON object, got %s", snippet(b))
	}
	return RawEntry{raw: b}, nil
}

// Tag returns the entry name, or "" when it has none
func (e RawEntry) Tag() string {
	return gjson.GetBytes(e.raw, "tag").String()
}

// Type returns the entry type field
func (e RawEntry) Type() string {
	return gjson.GetBytes(e.raw, "type").String()
}

// HasReferences reports whether the entry carries a reference list
func (e RawEntry) HasReferences() bool {
	return gjson.GetBytes(e.raw, referencesKey).IsArray()
}

// References returns the names listed in the entry's reference list.
// Non-string elements are ignored.
func (e RawEntry) References() []string {
	result := gjson.GetBytes(e.raw, referencesKey)
	if !result.IsArray() {
		return nil
	}
	var refs []string
	result.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			refs = append(refs, v.Str)
		}
		return true
	})
	return refs
}

// WithReferences returns a copy whose reference list is refs.
// Every other key keeps its bytes and position.
func (e RawEntry) WithReferences(refs []string) (RawEntry, error) {
	if refs == nil {
		refs = []string{}
	}
	list, err := marshal(refs)
	if err != nil {
		return RawEntry{}, err
	}
	out, err := sjson.SetRawBytes(e.Bytes(), referencesKey, list)
	if err != nil {
		return RawEntry{}, fmt.Errorf("failed to rewrite references of %q: %w", e.Tag(), err)
	}
	return RawEntry{raw: out}, nil
}

// Bytes returns a copy of the entry JSON
func (e RawEntry) Bytes() []byte {
	return append([]byte(nil), e.raw...)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func snippet(b []byte) string {
	const limit = 40
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
