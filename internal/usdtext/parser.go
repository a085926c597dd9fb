package usdtext

import (
	"bytes"
	"fmt"
	"strconv"
)

// Attr is a parsed attribute or relationship on a prim. TypeName is the
// declared type text, including a trailing [] for array types. Rel marks
// relationships, whose value holds the target paths.
type Attr struct {
	Name     string
	TypeName string
	Rel      bool
	HasValue bool
	Value    Value
}

// Prim is a node of the composed prim tree. Path is the absolute prim
// path, for example /Model/Skel/Joints.
type Prim struct {
	Specifier string
	TypeName  string
	Name      string
	Path      string
	Attrs     map[string]Attr
	Children  []*Prim
}

// Attr returns the named attribute when present.
func (p *Prim) Attr(name string) (Attr, bool) {
	a, ok := p.Attrs[name]
	return a, ok
}

// Layer is a parsed USDA layer.
type Layer struct {
	Roots []*Prim

	index map[string]*Prim
}

// Find returns the prim at the given absolute path, or nil.
func (l *Layer) Find(path string) *Prim {
	return l.index[path]
}

// Walk visits every prim in document order, parents before children.
func (l *Layer) Walk(fn func(*Prim)) {
	var visit func(*Prim)
	visit = func(p *Prim) {
		fn(p)
		for _, child := range p.Children {
			visit(child)
		}
	}
	for _, root := range l.Roots {
		visit(root)
	}
}

// ByType returns every prim with the given schema type, in document order.
func (l *Layer) ByType(typeName string) []*Prim {
	var prims []*Prim
	l.Walk(func(p *Prim) {
		if p.TypeName == typeName {
			prims = append(prims, p)
		}
	})
	return prims
}

// Parse reads a USDA layer. The input must carry the #usda header, which
// also rejects binary crate files early with a clear error.
func Parse(data []byte) (*Layer, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("#usda")) {
		return nil, fmt.Errorf("not a usda text layer: missing #usda header")
	}

	p := &parser{lex: newLexer(data)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.at("(") {
		if err := p.skipBalanced("(", ")"); err != nil {
			return nil, err
		}
	}

	layer := &Layer{index: make(map[string]*Prim)}
	for p.cur.kind != tokenEOF {
		if p.at(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.atSpecifier() {
			return nil, p.errorf("expected prim definition, have %s %q", p.cur.kind, p.cur.text)
		}
		prim, err := p.parsePrim("", layer)
		if err != nil {
			return nil, err
		}
		layer.Roots = append(layer.Roots, prim)
	}
	return layer, nil
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.cur.line, fmt.Sprintf(format, args...))
}

func (p *parser) at(punct string) bool {
	return p.cur.kind == tokenPunct && p.cur.text == punct
}

func (p *parser) atSpecifier() bool {
	if p.cur.kind != tokenIdent {
		return false
	}
	switch p.cur.text {
	case "def", "over", "class":
		return true
	}
	return false
}

func (p *parser) expect(punct string) error {
	if !p.at(punct) {
		return p.errorf("expected %q, have %s %q", punct, p.cur.kind, p.cur.text)
	}
	return p.advance()
}

// skipBalanced consumes a bracketed region, counting only the given
// bracket pair. Strings and references are single tokens, so brackets
// inside them cannot unbalance the count.
func (p *parser) skipBalanced(open, close string) error {
	if !p.at(open) {
		return p.errorf("expected %q, have %s %q", open, p.cur.kind, p.cur.text)
	}
	depth := 0
	for {
		if p.cur.kind == tokenEOF {
			return p.errorf("unterminated %q block", open)
		}
		if p.at(open) {
			depth++
		} else if p.at(close) {
			depth--
			if depth == 0 {
				return p.advance()
			}
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *parser) parsePrim(parentPath string, layer *Layer) (*Prim, error) {
	prim := &Prim{
		Specifier: p.cur.text,
		Attrs:     make(map[string]Attr),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.kind == tokenIdent {
		prim.TypeName = p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.kind != tokenString {
		return nil, p.errorf("expected prim name, have %s %q", p.cur.kind, p.cur.text)
	}
	prim.Name = p.cur.text
	prim.Path = parentPath + "/" + prim.Name
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.at("(") {
		if err := p.skipBalanced("(", ")"); err != nil {
			return nil, err
		}
	}

	if p.at("{") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.parseBody(prim, layer); err != nil {
			return nil, err
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
	}

	layer.index[prim.Path] = prim
	return prim, nil
}

func (p *parser) parseBody(prim *Prim, layer *Layer) error {
	for {
		switch {
		case p.cur.kind == tokenEOF:
			return p.errorf("unexpected end of input in prim %s", prim.Path)
		case p.at("}"):
			return nil
		case p.at(";"):
			if err := p.advance(); err != nil {
				return err
			}
		case p.atSpecifier():
			child, err := p.parsePrim(prim.Path, layer)
			if err != nil {
				return err
			}
			prim.Children = append(prim.Children, child)
		case p.cur.kind == tokenIdent:
			if err := p.parseAttr(prim); err != nil {
				return err
			}
		default:
			return p.errorf("unexpected %s %q in prim %s", p.cur.kind, p.cur.text, prim.Path)
		}
	}
}

// parseAttr handles typed attributes, relationships, and the handful of
// statement shapes exporters emit that carry no schema data, which are
// skipped without being recorded.
func (p *parser) parseAttr(prim *Prim) error {
	for p.cur.kind == tokenIdent && isQualifier(p.cur.text) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.cur.kind != tokenIdent {
		return p.errorf("expected attribute type, have %s %q", p.cur.kind, p.cur.text)
	}

	var attr Attr
	if p.cur.text == "rel" {
		attr.Rel = true
		if err := p.advance(); err != nil {
			return err
		}
		if p.cur.kind != tokenIdent {
			return p.errorf("expected relationship name, have %s %q", p.cur.kind, p.cur.text)
		}
	} else {
		attr.TypeName = p.cur.text
		if err := p.advance(); err != nil {
			return err
		}
		if p.at("[") {
			if err := p.advance(); err != nil {
				return err
			}
			if err := p.expect("]"); err != nil {
				return err
			}
			attr.TypeName += "[]"
		}
	}

	switch {
	case p.cur.kind == tokenIdent:
		attr.Name = p.cur.text
		if err := p.advance(); err != nil {
			return err
		}
	case p.at("="):
		// Single-identifier statement such as layer-level bookkeeping.
		// Record it under the identifier itself.
		attr.Name = attr.TypeName
		attr.TypeName = ""
	default:
		return p.skipUnknownStatement()
	}

	if p.at("=") {
		if err := p.advance(); err != nil {
			return err
		}
		if p.at("{") {
			// Time-sampled or dictionary payloads are outside the
			// subset. The attribute stays visible without a value.
			if err := p.skipBalanced("{", "}"); err != nil {
				return err
			}
		} else {
			value, err := p.parseValue()
			if err != nil {
				return err
			}
			attr.Value = value
			attr.HasValue = true
		}
	}

	if p.at("(") {
		if err := p.skipBalanced("(", ")"); err != nil {
			return err
		}
	}

	prim.Attrs[attr.Name] = attr
	return nil
}

func isQualifier(text string) bool {
	switch text {
	case "uniform", "custom", "varying", "prepend", "append", "delete", "add", "reorder":
		return true
	}
	return false
}

// skipUnknownStatement discards constructs such as variant set blocks.
// The parser sits just past the leading identifier.
func (p *parser) skipUnknownStatement() error {
	if p.cur.kind == tokenString {
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.at("=") {
		if err := p.advance(); err != nil {
			return err
		}
		if !p.at("{") {
			_, err := p.parseValue()
			return err
		}
	}
	if p.at("{") {
		return p.skipBalanced("{", "}")
	}
	if p.at("(") {
		return p.skipBalanced("(", ")")
	}
	return nil
}

func (p *parser) parseValue() (Value, error) {
	switch {
	case p.cur.kind == tokenNumber:
		f, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return Value{}, p.errorf("bad number %q: %v", p.cur.text, err)
		}
		return Value{Kind: KindNumber, Num: f}, p.advance()
	case p.cur.kind == tokenString:
		return Value{Kind: KindString, Str: p.cur.text}, p.advance()
	case p.cur.kind == tokenIdent:
		if p.cur.text == "None" {
			return Value{Kind: KindNone}, p.advance()
		}
		return Value{Kind: KindToken, Str: p.cur.text}, p.advance()
	case p.cur.kind == tokenPathRef:
		return Value{Kind: KindPath, Str: p.cur.text}, p.advance()
	case p.cur.kind == tokenAssetRef:
		return Value{Kind: KindAsset, Str: p.cur.text}, p.advance()
	case p.at("("):
		return p.parseSequence("(", ")", KindTuple)
	case p.at("["):
		return p.parseSequence("[", "]", KindList)
	default:
		return Value{}, p.errorf("expected value, have %s %q", p.cur.kind, p.cur.text)
	}
}

func (p *parser) parseSequence(open, close string, kind ValueKind) (Value, error) {
	if err := p.advance(); err != nil {
		return Value{}, err
	}
	value := Value{Kind: kind}
	for !p.at(close) {
		if p.cur.kind == tokenEOF {
			return Value{}, p.errorf("unterminated %q value", open)
		}
		item, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		value.Items = append(value.Items, item)
		if p.at(",") {
			if err := p.advance(); err != nil {
				return Value{}, err
			}
			continue
		}
		if !p.at(close) {
			return Value{}, p.errorf("expected %q or %q, have %s %q", ",", close, p.cur.kind, p.cur.text)
		}
	}
	return value, p.advance()
}
