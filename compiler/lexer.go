// lexer creates tokens from a sql string. The tokens are fed into the
// parser. Every token carries the byte offset it started at so the
// parser and, by extension, the caller can report precise error
// positions.
package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kpalmer/schoolsql/sqlerr"
)

type lexer struct {
	src   string
	start int
}

// NewLexer returns a lexer over src. Call Lex to produce the full token
// stream.
func NewLexer(src string) *lexer {
	return &lexer{src: src}
}

// Lex scans src into a token stream, or returns a SyntaxError at the
// first unrecognised or malformed lexeme.
func (l *lexer) Lex() ([]Token, error) {
	tokens := []Token{}
	for {
		l.skipWhitespace()
		if l.start >= len(l.src) {
			tokens = append(tokens, Token{Kind: TEOF, Pos: len(l.src)})
			return tokens, nil
		}
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (l *lexer) skipWhitespace() {
	for l.start < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.start:])
		if !unicode.IsSpace(r) {
			return
		}
		l.start += size
	}
}

func (l *lexer) scanToken() (Token, error) {
	start := l.start
	r, size := utf8.DecodeRuneInString(l.src[l.start:])
	switch {
	case r == '\'':
		return l.scanString(start)
	case r == '"':
		return Token{}, sqlerr.Syntax(start, "use single quotes for string literals")
	case unicode.IsDigit(r):
		return l.scanNumber(start), nil
	case isIdentStart(r):
		return l.scanIdent(start), nil
	case r == '.':
		l.start += size
		return Token{Kind: TDot, Value: ".", Pos: start}, nil
	case r == ',':
		l.start += size
		return Token{Kind: TComma, Value: ",", Pos: start}, nil
	case r == ';':
		l.start += size
		return Token{Kind: TSemicolon, Value: ";", Pos: start}, nil
	case r == '*':
		l.start += size
		return Token{Kind: TStar, Value: "*", Pos: start}, nil
	case r == '(':
		l.start += size
		return Token{Kind: TLParen, Value: "(", Pos: start}, nil
	case r == ')':
		l.start += size
		return Token{Kind: TRParen, Value: ")", Pos: start}, nil
	case r == '=':
		l.start += size
		return Token{Kind: TEq, Value: "=", Pos: start}, nil
	case r == '!':
		return l.scanBang(start)
	case r == '<':
		return l.scanLt(start), nil
	case r == '>':
		return l.scanGt(start), nil
	default:
		return Token{}, sqlerr.Syntax(start, "unexpected character %q", r)
	}
}

func (l *lexer) scanString(start int) (Token, error) {
	l.start++ // consume opening quote
	var b strings.Builder
	for {
		if l.start >= len(l.src) {
			return Token{}, sqlerr.Syntax(start, "unterminated string literal")
		}
		r, size := utf8.DecodeRuneInString(l.src[l.start:])
		if r == '\'' {
			// '' inside a string is an escaped single quote.
			if l.start+1 < len(l.src) && l.src[l.start+1] == '\'' {
				b.WriteByte('\'')
				l.start += 2
				continue
			}
			l.start += size
			return Token{Kind: TString, Value: b.String(), Pos: start}, nil
		}
		b.WriteRune(r)
		l.start += size
	}
}

func (l *lexer) scanNumber(start int) Token {
	for l.start < len(l.src) && isDigit(l.src[l.start]) {
		l.start++
	}
	if l.start < len(l.src) && l.src[l.start] == '.' && l.start+1 < len(l.src) && isDigit(l.src[l.start+1]) {
		l.start++
		for l.start < len(l.src) && isDigit(l.src[l.start]) {
			l.start++
		}
	}
	return Token{Kind: TNumber, Value: l.src[start:l.start], Pos: start}
}

func (l *lexer) scanIdent(start int) Token {
	for l.start < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.start:])
		if !isIdentCont(r) {
			break
		}
		l.start += size
	}
	word := l.src[start:l.start]
	upper := strings.ToUpper(word)
	if isKeyword(upper) {
		return Token{Kind: TKeyword, Value: upper, Pos: start}
	}
	return Token{Kind: TIdent, Value: word, Pos: start}
}

func (l *lexer) scanBang(start int) (Token, error) {
	if l.start+1 < len(l.src) && l.src[l.start+1] == '=' {
		l.start += 2
		return Token{Kind: TNeq, Value: "!=", Pos: start}, nil
	}
	return Token{}, sqlerr.Syntax(start, "unexpected character %q", '!')
}

func (l *lexer) scanLt(start int) Token {
	if l.start+1 < len(l.src) {
		switch l.src[l.start+1] {
		case '=':
			l.start += 2
			return Token{Kind: TLte, Value: "<=", Pos: start}
		case '>':
			l.start += 2
			return Token{Kind: TNeq, Value: "<>", Pos: start}
		}
	}
	l.start++
	return Token{Kind: TLt, Value: "<", Pos: start}
}

func (l *lexer) scanGt(start int) Token {
	if l.start+1 < len(l.src) && l.src[l.start+1] == '=' {
		l.start += 2
		return Token{Kind: TGte, Value: ">=", Pos: start}
	}
	l.start++
	return Token{Kind: TGt, Value: ">", Pos: start}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
