package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

func encode(entries []Entry, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatText:
		return encodeText(entries), nil
	case FormatJSON:
		return encodeJSON(entries, opts.Pretty)
	case FormatYAML:
		return encodeYAML(entries)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupported, opts.Format)
	}
}

// encodeText writes one name:value line per entry, duplicates included.
func encodeText(entries []Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Name)
		buf.WriteByte(':')
		buf.WriteString(e.Value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// keyed collapses entries into a name keyed mapping. A later entry
// overwrites the value of an earlier one with the same name; the key stays
// where it first appeared.
func keyed(entries []Entry) ([]string, map[string]string) {
	keys := make([]string, 0, len(entries))
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, seen := values[e.Name]; !seen {
			keys = append(keys, e.Name)
		}
		values[e.Name] = e.Value
	}
	return keys, values
}

func encodeJSON(entries []Entry, indent bool) ([]byte, error) {
	keys, values := keyed(entries)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	if indent {
		return pretty.Pretty(buf.Bytes()), nil
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// writeJSONString appends s as a JSON string. URLs keep their '&' unescaped.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func encodeYAML(entries []Entry) ([]byte, error) {
	keys, values := keyed(entries)

	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: values[k]},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}
