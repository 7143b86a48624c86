// Package frontmatter separates YAML frontmatter from a Markdown document.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Split separates `---` delimited YAML frontmatter from the body.
//
// LF and CRLF documents are both accepted, as is a closing delimiter on the
// last line without a trailing newline. If the document does not open with a
// delimiter, had is false and body is the full input (minus any BOM).
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	nl := "\n"
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = "\r\n"
	} else if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, false, nil
	}

	rest := content[len("---"+nl):]
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(rest, closeLine) {
		return []byte{}, rest[len(closeLine):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	if idx := bytes.Index(rest, []byte(nl+"---"+nl)); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(nl+"---"+nl):], true, nil
	}
	if bytes.HasSuffix(rest, []byte(nl+"---")) {
		return rest[:len(rest)-len("---")], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without delimiters) into a map.
// Empty input yields an empty, non-nil map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
