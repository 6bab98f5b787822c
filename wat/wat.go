// Package wat compiles a small, fixed subset of the WebAssembly text
// format into a binary core module, for use as test fixture tooling
// elsewhere in this repository. It understands exactly the forms those
// fixtures need — module-level import/memory/func declarations, folded
// param/result lists, and a handful of instructions (i32.const, i64.const,
// call, i64.store) — and errors out on anything else rather than trying to
// be a general WAT parser.
package wat

import (
	"fmt"
	"strconv"
	"strings"
)

// Compile parses source as WAT and encodes it as a binary WASM module.
func Compile(source string) ([]byte, error) {
	root, err := parse(source)
	if err != nil {
		return nil, err
	}
	if len(root.children) == 0 || root.children[0].text != "module" {
		return nil, fmt.Errorf("wat: expected a top-level (module ...) form")
	}
	m, err := buildModule(root.children[1:])
	if err != nil {
		return nil, err
	}
	return encodeModule(m)
}

// node is one parsed s-expression: either a leaf atom/string (len(children)
// == 0) or a parenthesized list of children.
type node struct {
	text     string
	children []*node
}

func parse(source string) (*node, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &tokenParser{toks: toks}
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("wat: trailing input after top-level form")
	}
	return n, nil
}

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokAtom
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(source string) ([]token, error) {
	var toks []token
	i, n := 0, len(source)
	for i < n {
		c := source[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ';' && i+1 < n && source[i+1] == ';':
			for i < n && source[i] != '\n' {
				i++
			}
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '"':
			j := i + 1
			var sb strings.Builder
			for j < n && source[j] != '"' {
				if source[j] == '\\' && j+1 < n {
					sb.WriteByte(source[j+1])
					j += 2
					continue
				}
				sb.WriteByte(source[j])
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("wat: unterminated string literal")
			}
			toks = append(toks, token{kind: tokAtom, text: sb.String()})
			i = j + 1
		default:
			j := i
			for j < n && !isDelim(source[j]) {
				j++
			}
			toks = append(toks, token{kind: tokAtom, text: source[i:j]})
			i = j
		}
	}
	return toks, nil
}

func isDelim(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')'
}

type tokenParser struct {
	toks []token
	pos  int
}

func (p *tokenParser) parseNode() (*node, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("wat: unexpected end of input")
	}
	tok := p.toks[p.pos]
	if tok.kind != tokLParen {
		return nil, fmt.Errorf("wat: expected '(', got %q", tok.text)
	}
	p.pos++
	n := &node{}
	for {
		if p.pos >= len(p.toks) {
			return nil, fmt.Errorf("wat: unterminated list")
		}
		next := p.toks[p.pos]
		if next.kind == tokRParen {
			p.pos++
			return n, nil
		}
		if next.kind == tokLParen {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			continue
		}
		p.pos++
		n.children = append(n.children, &node{text: next.text})
	}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wat: invalid integer literal %q: %w", s, err)
	}
	return v, nil
}
