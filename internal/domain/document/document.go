// Package document holds a sing-box config template as ordered JSON.
// Top-level fields other than the entry list are passed through byte for byte.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// EntriesKey is the top-level field holding the entry list
const EntriesKey = "outbounds"

const indent = "  "

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is one loaded template. Each Load returns an independent copy.
type Document struct {
	raw     []byte
	entries []RawEntry
}

// Load parses a template. Every failure is a *TemplateError.
func Load(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, templateError("template is empty", nil)
	}
	if !gjson.ValidBytes(data) {
		return nil, templateError("template is not valid JSON", jsonSyntaxError(data))
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, templateError("top level must be a JSON object", nil)
	}

	list := root.Get(EntriesKey)
	if !list.Exists() {
		return nil, templateError(fmt.Sprintf("%q field is missing", EntriesKey), nil)
	}
	if !list.IsArray() {
		return nil, templateError(fmt.Sprintf("%q must be a list", EntriesKey), nil)
	}

	doc := &Document{raw: append([]byte(nil), data...)}
	for i, v := range list.Array() {
		if !v.IsObject() {
			return nil, templateError(fmt.Sprintf("%s[%d] must be a JSON object", EntriesKey, i), nil)
		}
		doc.entries = append(doc.entries, RawEntry{raw: []byte(v.Raw)})
	}
	return doc, nil
}

// jsonSyntaxError recovers a positioned error message for invalid input.
func jsonSyntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return nil
}

// Entries returns the entry list
func (d *Document) Entries() []RawEntry {
	return append([]RawEntry(nil), d.entries...)
}

// SetEntries replaces the entry list
func (d *Document) SetEntries(entries []RawEntry) {
	d.entries = append([]RawEntry(nil), entries...)
}

// Tags returns the names of all entries that have one, in list order
func (d *Document) Tags() []string {
	tags := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if tag := e.Tag(); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Raw returns the template bytes as loaded
func (d *Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Marshal splices the entry list back into the template and indents the result
// with two spaces. Key order follows the template.
func (d *Document) Marshal() ([]byte, error) {
	var list bytes.Buffer
	list.WriteByte('[')
	for i, e := range d.entries {
		if i > 0 {
			list.WriteByte(',')
		}
		list.Write(e.raw)
	}
	list.WriteByte(']')

	merged, err := sjson.SetRawBytes(d.Raw(), EntriesKey, list.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", EntriesKey, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(merged), "", indent); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	return out.Bytes(), nil
}
