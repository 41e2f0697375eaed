package lexer

import (
	"testing"

	"github.com/funvibe/emojc/internal/token"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	stream, err := New(input, "test.emojic").Lex()
	if err != nil {
		t.Fatalf("lex %q: %v", input, err)
	}
	var tokens []token.Token
	for stream.More() {
		tok, err := stream.ConsumeToken()
		if err != nil {
			t.Fatalf("consume: %v", err)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestLexer(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		types []token.TokenType
	}{
		{"emoji_identifier", "🐇", []token.TokenType{token.Identifier}},
		{"variable", "counter", []token.TokenType{token.Variable}},
		{"integer", "42", []token.TokenType{token.Integer}},
		{"negative_integer", "-7", []token.TokenType{token.Integer}},
		{"hex_integer", "0xFF", []token.TokenType{token.Integer}},
		{"double", "3.14", []token.TokenType{token.Double}},
		{"boolean_true", "👍", []token.TokenType{token.BooleanTrue}},
		{"boolean_false", "👎", []token.TokenType{token.BooleanFalse}},
		{"symbol", "🔟a", []token.TokenType{token.Symbol}},
		{"string", "🔤hello🔤", []token.TokenType{token.String}},
		{"doc_comment", "🌮 a doc 🌮", []token.TokenType{token.DocumentationComment}},
		{"argument_brackets", "〖〗", []token.TokenType{token.ArgumentBracketOpen, token.ArgumentBracketClose}},
		{"line_comment_skipped", "👴 nothing here\n5", []token.TokenType{token.Integer}},
		{"block_comment_skipped", "👵 ignore me 👵 5", []token.TokenType{token.Integer}},
		{"mixed_declaration", "🐇 🦊 🍇 🍉", []token.TokenType{token.Identifier, token.Identifier, token.Identifier, token.Identifier}},
		{"variable_then_emoji", "x🍎", []token.TokenType{token.Variable, token.Identifier}},
		{"geometric_operator", "◀", []token.TokenType{token.Identifier}},
		{"inference_marker", "●", []token.TokenType{token.Identifier}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := lexAll(t, tc.input)
			if len(tokens) != len(tc.types) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tc.types), tokens)
			}
			for i, typ := range tc.types {
				if tokens[i].Type != typ {
					t.Errorf("token %d: got %s, want %s", i, tokens[i].Type, typ)
				}
			}
		})
	}
}

func TestLexerValues(t *testing.T) {
	tokens := lexAll(t, "🔤a ❌n b🔤")
	if len(tokens) != 1 || tokens[0].Value != "a \n b" {
		t.Fatalf("escape handling failed: %q", tokens[0].Value)
	}

	tokens = lexAll(t, "1_000_000")
	if tokens[0].Value != "1000000" {
		t.Fatalf("digit separators not stripped: %q", tokens[0].Value)
	}

	tokens = lexAll(t, "🌮  spaced doc  🌮")
	if tokens[0].Value != "spaced doc" {
		t.Fatalf("doc comment not trimmed: %q", tokens[0].Value)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAll(t, "1\n 2")
	if tokens[0].Position.Line != 1 {
		t.Errorf("first token line = %d, want 1", tokens[0].Position.Line)
	}
	if tokens[1].Position.Line != 2 {
		t.Errorf("second token line = %d, want 2", tokens[1].Position.Line)
	}
}

func TestLexerErrors(t *testing.T) {
	if _, err := New("🔤 unterminated", "t.emojic").Lex(); err == nil {
		t.Error("unterminated string must fail")
	}
	if _, err := New("🔤a ❌q🔤", "t.emojic").Lex(); err == nil {
		t.Error("bad escape must fail")
	}
	if _, err := New("👵 never closed", "t.emojic").Lex(); err == nil {
		t.Error("unterminated block comment must fail")
	}
}

func TestEmojiModifierSequences(t *testing.T) {
	// A thumbs up with a skin tone modifier is one identifier... except 👍
	// itself is the boolean literal; use another base.
	tokens := lexAll(t, "👋🏽")
	if len(tokens) != 1 || tokens[0].Type != token.Identifier {
		t.Fatalf("modifier sequence split: %v", tokens)
	}
}
