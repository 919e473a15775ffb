package paramtree

import (
	"bytes"
	"fmt"

	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// Document is a parsed YAML (or JSON) configuration document. Values keeps the
// source key order; indentation and comments are remembered so that Marshal
// writes the document back in the style it came in.
type Document struct {
	Values gyaml.MapSlice

	comments  gyaml.CommentMap
	indent    int  // detected indent (2 or 4 spaces typically)
	indentSeq bool // whether sequences under a key are indented
}

// Parse reads a configuration document. Empty input gives an empty document.
func Parse(data []byte) (*Document, error) {
	d := &Document{
		Values:    gyaml.MapSlice{},
		comments:  gyaml.CommentMap{},
		indent:    2,
		indentSeq: true,
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return d, nil
	}

	var tmp yaml.Node
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("paramtree: failed to parse YAML: %w", err)
	}
	if tmp.Kind != yaml.DocumentNode || len(tmp.Content) == 0 || tmp.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("paramtree: %w", ErrNotMapping)
	}

	if err := gyaml.UnmarshalWithOptions(data, &d.Values, gyaml.UseOrderedMap(), gyaml.CommentToMap(d.comments)); err != nil {
		return nil, fmt.Errorf("paramtree: failed to decode YAML: %w", err)
	}
	d.indent, d.indentSeq = detectIndentAndSequence(data)
	return d, nil
}

// Tree builds the node forest of the document.
func (d *Document) Tree(opts BuildOptions) []*Node {
	return Build(d.Values, opts)
}

// Apply writes every key of p into the document, replacing existing top-level
// values and appending new keys at the end.
func (d *Document) Apply(p *Patch) {
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		v = cloneValue(v)
		if !setMember(d.Values, k, v) {
			d.Values = append(d.Values, gyaml.MapItem{Key: k, Value: v})
		}
	}
}

// Marshal encodes the document with its original indentation and comments.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gyaml.NewEncoder(
		&buf, gyaml.Indent(d.indent), gyaml.IndentSequence(d.indentSeq), gyaml.WithComment(d.comments),
	)
	if err := enc.Encode(yamlValue(d.Values)); err != nil {
		return nil, fmt.Errorf("paramtree: failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("paramtree: failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// detectIndentAndSequence returns the base indent, and whether sequences that are values
// of mapping keys are indented one level (true) or "indentless" (false).
func detectIndentAndSequence(b []byte) (int, bool) {
	indent := detectIndent(b)
	lines := bytes.Split(b, []byte("\n"))
	votes := 0 // >0 prefer indented seq, <0 prefer indentless

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		if isBlankOrComment(ln) || !endsWithMappingKey(ln) {
			continue
		}
		keyIndent := leadingSpaces(ln)
		// the first non-blank, non-comment line decides
		for j := i + 1; j < len(lines); j++ {
			nxt := lines[j]
			if isBlankOrComment(nxt) {
				continue
			}
			lsp := leadingSpaces(nxt)
			trimmed := bytes.TrimLeft(nxt, " ")
			if len(trimmed) > 0 && trimmed[0] == '-' {
				switch lsp {
				case keyIndent + indent:
					votes++
				case keyIndent:
					votes--
				}
			}
			break
		}
	}
	// no evidence either way: indented sequences
	return indent, votes >= 0
}

func isBlankOrComment(ln []byte) bool {
	t := bytes.TrimSpace(ln)
	return len(t) == 0 || t[0] == '#'
}

// endsWithMappingKey returns true if the line is a block mapping key of the form "key:" possibly
// followed by spaces and/or a comment.
func endsWithMappingKey(ln []byte) bool {
	idx := bytes.IndexByte(ln, ':')
	if idx < 0 {
		return false
	}
	rest := bytes.TrimSpace(ln[idx+1:])
	return len(rest) == 0 || rest[0] == '#'
}

// detectIndent returns the GCD of all non-zero line indents, or 2 when there
// is nothing to go by.
func detectIndent(b []byte) int {
	result := 0
	for _, ln := range bytes.Split(b, []byte("\n")) {
		if isBlankOrComment(ln) {
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			result = gcd(result, n)
		}
		if result == 1 {
			break
		}
	}
	if result > 0 && result <= 8 {
		return result
	}
	return 2
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
