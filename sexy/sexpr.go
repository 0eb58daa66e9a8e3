package sexy

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeNumber
	NodeEllipsis
	NodeList
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeNumber:
		return "number"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Node is one s-expression datum.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeNumber, NodeString (unquoted)
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeString:
		return strconv.Quote(n.Text)
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return n.Text
	}
}

// IsAtom reports whether the node is not a list.
func (n *Node) IsAtom() bool {
	return n.Type != NodeList
}

// Head returns the leading symbol of a list, or "".
func (n *Node) Head() string {
	if n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewNumber(text string) *Node {
	return &Node{Type: NodeNumber, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items ...*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// Parse reads exactly one datum from input. Text after ';' on a line is a
// comment.
func Parse(input string) (*Node, error) {
	r := &reader{input: input}
	node, err := r.readDatum()
	if err != nil {
		return nil, err
	}
	r.skipSpace()
	if r.pos < len(r.input) {
		return nil, fmt.Errorf("offset %d: expected end of input but got %q", r.pos, r.input[r.pos])
	}
	return node, nil
}

type reader struct {
	input string
	pos   int
}

func (r *reader) skipSpace() {
	for r.pos < len(r.input) {
		switch c := r.input[r.pos]; {
		case c == ';':
			for r.pos < len(r.input) && r.input[r.pos] != '\n' {
				r.pos++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) readDatum() (*Node, error) {
	r.skipSpace()
	if r.pos >= len(r.input) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch r.input[r.pos] {
	case '(':
		return r.readList()
	case ')':
		return nil, fmt.Errorf("offset %d: unexpected ')'", r.pos)
	case '"':
		return r.readString()
	default:
		return r.readWord(), nil
	}
}

func (r *reader) readList() (*Node, error) {
	start := r.pos
	r.pos++ // consume '('
	list := NewList()
	for {
		r.skipSpace()
		if r.pos >= len(r.input) {
			return nil, fmt.Errorf("offset %d: unterminated list", start)
		}
		if r.input[r.pos] == ')' {
			r.pos++
			return list, nil
		}
		item, err := r.readDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
}

func (r *reader) readString() (*Node, error) {
	start := r.pos
	r.pos++ // opening quote
	for r.pos < len(r.input) {
		switch r.input[r.pos] {
		case '\\':
			r.pos += 2
		case '"':
			r.pos++
			value, err := strconv.Unquote(r.input[start:r.pos])
			if err != nil {
				return nil, fmt.Errorf("offset %d: invalid string literal: %w", start, err)
			}
			return NewString(value), nil
		default:
			r.pos++
		}
	}
	return nil, fmt.Errorf("offset %d: unterminated string", start)
}

// readWord reads a bare token: a number, "...", or a symbol. Symbols may
// contain any character except whitespace, parentheses, quotes, and ';', so
// type names like ?[]u8 read as one symbol.
func (r *reader) readWord() *Node {
	start := r.pos
	for r.pos < len(r.input) && !isDelimiter(r.input[r.pos]) {
		r.pos++
	}
	word := r.input[start:r.pos]
	if word == "..." {
		return NewEllipsis()
	}
	if isNumber(word) {
		return NewNumber(word)
	}
	return NewSymbol(word)
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '"', ';':
		return true
	}
	return false
}

func isNumber(word string) bool {
	digits := strings.TrimLeft(word, "+-")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return false
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}
