package syntax

import "fmt"

// item is a scanned token with its text and position.
type item struct {
	tok token
	lit string
	pos Pos
}

// lexer scans the tokens of a graph file. A word is any run of bytes
// other than whitespace, punctuation, and '#', which starts a comment
// that runs to the end of the line.
type lexer struct {
	filename  string
	src       []byte
	offset    int
	line, col uint
}

func newLexer(filename string, src []byte) *lexer {
	return &lexer{filename: filename, src: src, line: 1, col: 1}
}

func (l *lexer) pos() Pos {
	return MakePos(l.filename, l.line, l.col)
}

func (l *lexer) advance() byte {
	c := l.src[l.offset]
	l.offset++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpace() {
	for l.offset < len(l.src) {
		switch l.src[l.offset] {
		case ' ', '\t', '\r':
			l.advance()
		case '#':
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (item, error) {
	l.skipSpace()
	if l.offset >= len(l.src) {
		return item{tok: EOF, pos: l.pos()}, nil
	}
	pos := l.pos()
	c := l.src[l.offset]
	if tok, ok := punct[c]; ok {
		l.advance()
		return item{tok: tok, lit: string(c), pos: pos}, nil
	}
	if c < ' ' || c == 0x7f {
		return item{}, &Error{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", c)}
	}
	start := l.offset
	for l.offset < len(l.src) && isWordByte(l.src[l.offset]) {
		l.advance()
	}
	return item{tok: Word, lit: string(l.src[start:l.offset]), pos: pos}, nil
}

func isWordByte(c byte) bool {
	if _, ok := punct[c]; ok {
		return false
	}
	return c > ' ' && c != '#' && c != 0x7f
}
