package keymap

import (
	"fmt"
	"strconv"

	"github.com/char5742/wii2gamepad/internal/event"
	"github.com/char5742/wii2gamepad/internal/wiimote"
)

// ErrorKind はキーマップの読み込みエラーの種類
type ErrorKind int

const (
	SyntaxError   ErrorKind = iota // 書式の誤り
	SemanticError                  // 重複や未知の名前
)

func (k ErrorKind) String() string {
	if k == SemanticError {
		return "semantic error"
	}
	return "syntax error"
}

// ParseError は最初に失敗した行（1始まり）を持つ
type ParseError struct {
	Line int
	Kind ErrorKind
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("keymap line %d: %s: %s", e.Line, e.Kind, e.Msg)
}

type parseState int

const (
	needSection parseState = iota
	inSection
	inComment
)

// 0..kindCount-1 は各拡張、wildcard は [All] セクション
type target int

const wildcard = target(kindCount)

// span はバッファ内のトークンの位置
type span struct {
	off, len int
}

// identityFields は明示的に設定されたかどうかも記録する
type identityFields struct {
	Identity
	nameSet, vendorSet, productSet bool
}

type parser struct {
	buf  []byte
	pos  int
	line int

	state    parseState
	target   target
	selected bool // 一度でもセクションが選ばれた

	tables [kindCount + 1]Table
	ids    [kindCount + 1]identityFields
}

// Parse はキーマップファイルの内容を解析し、[All] の値を補完した Registry を返す
// 最初のエラーで解析を止め、*ParseError を返す
func Parse(data []byte) (*Registry, error) {
	p := &parser{buf: data, line: 1}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.resolve(), nil
}

func (p *parser) run() error {
	for {
		p.skipBlank()
		if p.eof() {
			return nil
		}

		if p.peek() == ';' {
			p.state = inComment
		}

		switch p.state {
		case needSection:
			if p.peek() != '[' {
				return p.errorf(SyntaxError, "section label expected")
			}
			p.state = inSection
			fallthrough
		case inSection:
			var err error
			if p.peek() == '[' {
				err = p.label()
			} else {
				err = p.assignment()
			}
			if err != nil {
				return err
			}
		case inComment:
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
			if p.selected {
				p.state = inSection
			} else {
				p.state = needSection
			}
		}

		// トークンの後に続けてよいのは改行かコメントだけ
		p.skipSpace()
		if !p.eof() && p.peek() != '\n' && p.peek() != ';' {
			return p.errorf(SyntaxError, "unexpected token")
		}
	}
}

// label は [Label] を読んで対象を切り替える
func (p *parser) label() error {
	p.pos++
	start := p.pos
	for {
		if p.eof() || p.peek() == '\n' || p.peek() == ';' {
			return p.errorf(SyntaxError, "] expected")
		}
		if p.peek() == ']' {
			break
		}
		p.pos++
	}
	tok := span{start, p.pos - start}
	p.pos++

	switch p.text(tok) {
	case "None":
		p.target = target(Core)
	case "Nunchuk":
		p.target = target(Nunchuk)
	case "Classic Controller":
		p.target = target(ClassicController)
	case "All":
		p.target = wildcard
	default:
		return p.errorf(SyntaxError, "extension %q not recognized", p.text(tok))
	}
	p.selected = true
	return nil
}

// assignment は LEFT = RIGHT の1行を読む
func (p *parser) assignment() error {
	start := p.pos
	for !p.eof() && p.peek() != '=' {
		if p.peek() == '\n' || p.peek() == ';' {
			return p.errorf(SyntaxError, "= expected")
		}
		p.pos++
	}
	if p.eof() {
		return p.errorf(SyntaxError, "= expected")
	}
	left := p.trimRight(span{start, p.pos - start})
	p.pos++

	p.skipSpace()
	if p.eof() || p.peek() == '\n' || p.peek() == ';' {
		return p.errorf(SyntaxError, "right token expected")
	}
	start = p.pos
	for !p.eof() && p.peek() != '\n' && p.peek() != ';' {
		p.pos++
	}
	right := p.trimRight(span{start, p.pos - start})

	return p.interpret(left, right)
}

func (p *parser) interpret(left, right span) error {
	id := &p.ids[p.target]
	value := p.text(right)

	switch p.text(left) {
	case "Name":
		if id.nameSet {
			return p.errorf(SemanticError, "Name already specified")
		}
		id.Name, id.nameSet = value, true
	case "Vendor":
		if id.vendorSet {
			return p.errorf(SemanticError, "Vendor already specified")
		}
		v, err := p.deviceID(value)
		if err != nil {
			return err
		}
		id.Vendor, id.vendorSet = v, true
	case "Product":
		if id.productSet {
			return p.errorf(SemanticError, "Product ID already specified")
		}
		v, err := p.deviceID(value)
		if err != nil {
			return err
		}
		id.Product, id.productSet = v, true
	default:
		return p.binding(left, right)
	}
	return nil
}

func (p *parser) deviceID(value string) (uint16, error) {
	v, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, p.errorf(SemanticError, "invalid device id %q", value)
	}
	return uint16(v), nil
}

func (p *parser) binding(left, right span) error {
	key, ok := wiimote.LookupKey(p.text(left))
	if !ok {
		return p.errorf(SemanticError, "key %q not understood", p.text(left))
	}

	// 割り当て先は1語だけ
	for i := right.off; i < right.off+right.len; i++ {
		if isSpace(p.buf[i]) {
			return p.errorf(SyntaxError, "unexpected token after %q", p.text(span{right.off, i - right.off}))
		}
	}

	var b Binding
	if p.buf[right.off] == '-' {
		b.Reversed = true
		right = span{right.off + 1, right.len - 1}
	}

	name := p.text(right)
	if code, ok := event.KeyCode(name); ok {
		b.Category, b.Code = CategoryKey, code
	} else if code, ok := event.RelCode(name); ok {
		b.Category, b.Code = CategoryRel, code
	} else if code, ok := event.AbsCode(name); ok {
		b.Category, b.Code = CategoryAbs, code
	} else {
		return p.errorf(SemanticError, "input %q not understood", name)
	}

	table := &p.tables[p.target]
	if table[key].Bound() {
		return p.errorf(SemanticError, "duplicate entry for %s", key)
	}
	table[key] = b
	return nil
}

// resolve は各拡張の未設定の項目を [All] の値で埋める
func (p *parser) resolve() *Registry {
	all, allID := p.tables[wildcard], p.ids[wildcard]

	r := &Registry{}
	for _, kind := range Kinds {
		table := p.tables[kind]
		for i := range table {
			if !table[i].Bound() && all[i].Bound() {
				table[i] = all[i]
			}
		}
		r.tables[kind] = table

		id := p.ids[kind]
		if !id.nameSet && allID.nameSet {
			id.Name = allID.Name
		}
		if !id.vendorSet && allID.vendorSet {
			id.Vendor = allID.Vendor
		}
		if !id.productSet && allID.productSet {
			id.Product = allID.Product
		}
		r.identities[kind] = id.Identity
	}
	return r
}

func (p *parser) eof() bool {
	return p.pos >= len(p.buf)
}

func (p *parser) peek() byte {
	return p.buf[p.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// skipSpace は行内の空白を読み飛ばす
func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// skipBlank は空白と改行を読み飛ばし、行番号を進める
func (p *parser) skipBlank() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == '\n':
			p.line++
		case !isSpace(c):
			return
		}
		p.pos++
	}
}

func (p *parser) trimRight(s span) span {
	for s.len > 0 && isSpace(p.buf[s.off+s.len-1]) {
		s.len--
	}
	return s
}

func (p *parser) text(s span) string {
	return string(p.buf[s.off : s.off+s.len])
}

func (p *parser) errorf(kind ErrorKind, format string, args ...any) error {
	return &ParseError{Line: p.line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
