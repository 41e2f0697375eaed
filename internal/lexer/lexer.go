package lexer

import (
	"strings"
	"unicode"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/token"
)

// Lexer turns source text into a token stream. Emoji form identifiers, runs
// of non-emoji non-whitespace characters form variables. The lexer is a
// state machine over runes; multi-rune emoji sequences (ZWJ sequences, skin
// tone modifiers, flag pairs) collapse into a single identifier token.
type Lexer struct {
	input []rune
	pos   int
	file  string
	line  int
	col   int
}

func New(input, file string) *Lexer {
	return &Lexer{input: []rune(input), file: file, line: 1, col: 0}
}

// Lex tokenizes the whole input. The error, if any, is positioned at the
// offending rune.
func (l *Lexer) Lex() (*token.Stream, error) {
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}
		tokens = append(tokens, *tok)
	}
	return token.NewStream(tokens), nil
}

func (l *Lexer) position() token.SourcePosition {
	return token.SourcePosition{Line: l.line, Column: l.col, File: l.file}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos], true
}

func (l *Lexer) read() (rune, bool) {
	r, ok := l.peek()
	if !ok {
		return 0, false
	}
	l.pos++
	if r == '\n' || r == 0x2028 || r == 0x2029 {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r, true
}

func isNewline(r rune) bool {
	return r == '\n' || r == 0x2028 || r == 0x2029
}

// next returns the next token, or nil at end of input.
func (l *Lexer) next() (*token.Token, error) {
	for {
		r, ok := l.peek()
		if !ok {
			return nil, nil
		}
		if unicode.IsSpace(r) {
			l.read()
			continue
		}
		pos := l.position()

		switch {
		case r == SigilLineComment:
			l.read()
			for {
				c, ok := l.read()
				if !ok || isNewline(c) {
					break
				}
			}
			continue
		case r == SigilBlockComment:
			l.read()
			if err := l.skipBlockComment(pos); err != nil {
				return nil, err
			}
			continue
		case r == SigilDocComment:
			l.read()
			return l.lexDocComment(pos)
		case r == SigilString:
			l.read()
			return l.lexString(pos)
		case r == SigilSymbol:
			l.read()
			c, ok := l.read()
			if !ok {
				return nil, diagnostics.NewError(diagnostics.ErrL002, pos, "unterminated symbol literal")
			}
			return &token.Token{Type: token.Symbol, Value: string(c), Position: pos}, nil
		case r == SigilTrue:
			l.read()
			return &token.Token{Type: token.BooleanTrue, Position: pos}, nil
		case r == SigilFalse:
			l.read()
			return &token.Token{Type: token.BooleanFalse, Position: pos}, nil
		case r == argBracketOpen:
			l.read()
			return &token.Token{Type: token.ArgumentBracketOpen, Position: pos}, nil
		case r == argBracketClose:
			l.read()
			return &token.Token{Type: token.ArgumentBracketClose, Position: pos}, nil
		case r >= '0' && r <= '9', r == '-' || r == '+':
			return l.lexNumber(pos)
		case isEmoji(r) || r == SigilInference:
			return l.lexIdentifier(pos)
		default:
			return l.lexVariable(pos)
		}
	}
}

func (l *Lexer) skipBlockComment(pos token.SourcePosition) error {
	for {
		c, ok := l.read()
		if !ok {
			return diagnostics.NewError(diagnostics.ErrL002, pos, "expected %c but found end of file instead", SigilBlockComment)
		}
		if c == SigilBlockComment {
			return nil
		}
	}
}

func (l *Lexer) lexDocComment(pos token.SourcePosition) (*token.Token, error) {
	var sb strings.Builder
	for {
		c, ok := l.read()
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrL002, pos, "unterminated documentation comment")
		}
		if c == SigilDocComment {
			break
		}
		sb.WriteRune(c)
	}
	return &token.Token{Type: token.DocumentationComment, Value: strings.TrimSpace(sb.String()), Position: pos}, nil
}

func (l *Lexer) lexString(pos token.SourcePosition) (*token.Token, error) {
	var sb strings.Builder
	for {
		c, ok := l.read()
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrL002, pos, "expected %c but found end of file instead", SigilString)
		}
		switch c {
		case SigilString:
			return &token.Token{Type: token.String, Value: sb.String(), Position: pos}, nil
		case SigilEscape:
			e, ok := l.read()
			if !ok {
				return nil, diagnostics.NewError(diagnostics.ErrL002, pos, "unterminated string literal")
			}
			switch e {
			case SigilString, SigilEscape:
				sb.WriteRune(e)
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			default:
				return nil, diagnostics.NewError(diagnostics.ErrL003, l.position(), "unrecognized escape sequence %c%c", SigilEscape, e)
			}
		default:
			sb.WriteRune(c)
		}
	}
}

func (l *Lexer) lexNumber(pos token.SourcePosition) (*token.Token, error) {
	var sb strings.Builder
	c, _ := l.read()
	sb.WriteRune(c)
	isHex := false
	isDouble := false
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case isHex && ((r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')):
			sb.WriteRune(r)
		case (r == 'x' || r == 'X') && sb.Len() == 1 && c == '0':
			isHex = true
			sb.WriteRune(r)
		case r == '.' && !isDouble && !isHex:
			isDouble = true
			sb.WriteRune(r)
		case r == '_':
			// digit separator
		default:
			goto done
		}
		l.read()
	}
done:
	// A bare sign is an operator-looking variable, not a number.
	if sb.Len() == 1 && (c == '-' || c == '+') {
		return &token.Token{Type: token.Variable, Value: sb.String(), Position: pos}, nil
	}
	t := token.Integer
	if isDouble {
		t = token.Double
	}
	return &token.Token{Type: t, Value: sb.String(), Position: pos}, nil
}

func (l *Lexer) lexIdentifier(pos token.SourcePosition) (*token.Token, error) {
	var sb strings.Builder
	c, _ := l.read()
	sb.WriteRune(c)
	runes := 1
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		switch {
		case r == 0xFE0F:
			// variation selector, ignored
			l.read()
		case r == 0x200D:
			// zero width joiner glues the next emoji into this identifier
			l.read()
			sb.WriteRune(r)
			runes++
			if e, ok := l.peek(); ok && isEmoji(e) {
				l.read()
				sb.WriteRune(e)
				runes++
			}
		case isEmojiModifier(r), isRegionalIndicator(r) && isRegionalIndicator(c) && runes == 1:
			l.read()
			sb.WriteRune(r)
			runes++
		default:
			return &token.Token{Type: token.Identifier, Value: sb.String(), Position: pos}, nil
		}
	}
	return &token.Token{Type: token.Identifier, Value: sb.String(), Position: pos}, nil
}

func (l *Lexer) lexVariable(pos token.SourcePosition) (*token.Token, error) {
	var sb strings.Builder
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		if unicode.IsSpace(r) || isEmoji(r) || r == argBracketOpen || r == argBracketClose || r == SigilInference {
			break
		}
		l.read()
		sb.WriteRune(r)
	}
	return &token.Token{Type: token.Variable, Value: sb.String(), Position: pos}, nil
}
