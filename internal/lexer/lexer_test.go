package lexer

import "testing"

func TestArithmeticExpression(t *testing.T) {
	tokens, err := New("t.forge", "3 + 4.5f * x").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	expected := []Kind{NUMBER, PLUS, NUMBER, STAR, IDENTIFIER, EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
	if tokens[2].Lexeme != "4.5f" {
		t.Errorf("expected lexeme 4.5f, got %q", tokens[2].Lexeme)
	}
}

func TestKeywordsAndWalrus(t *testing.T) {
	tokens, err := New("t.forge", "x := move p").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expected := []Kind{IDENTIFIER, WALRUS, MOVE, IDENTIFIER, EOF}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestCompoundOperators(t *testing.T) {
	input := "+= -= *= /= == != <= >= && || -> :="
	tokens, err := New("t.forge", input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expected := []Kind{
		PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		EQ, NEQ, LTE, GTE, AND_AND, OR_OR, ARROW, WALRUS, EOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestLineComment(t *testing.T) {
	tokens, err := New("t.forge", "x := 1 // trailing comment\ny := 2").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	expected := []Kind{IDENTIFIER, WALRUS, NUMBER, NEWLINE, IDENTIFIER, WALRUS, NUMBER, EOF}
	if len(kinds) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, kinds)
	}
	for i, exp := range expected {
		if kinds[i] != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, kinds[i])
		}
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, err := New("t.forge", `x := "unterminated`).Tokenize()
	if err == nil {
		t.Fatal("expected a lexical error for an unterminated string")
	}
}

func TestSecondDotIsFatal(t *testing.T) {
	_, err := New("t.forge", "x := 1.2.3").Tokenize()
	if err == nil {
		t.Fatal("expected a lexical error for a malformed number")
	}
}

func TestStringDoesNotHonorEscapes(t *testing.T) {
	tokens, err := New("t.forge", `"a\nb"`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Lexeme != `a\nb` {
		t.Errorf("expected verbatim body a\\nb, got %q", tokens[0].Lexeme)
	}
}

// TestTokenizerRoundTrip checks the universal invariant from spec.md §8:
// re-lexing any emitted non-comment token's lexeme yields one token of
// the same kind.
func TestTokenizerRoundTrip(t *testing.T) {
	inputs := []string{
		"x := 1 + 2.5f * (y - z)",
		`s := "hello world"`,
		"def f(a: int) -> int { return a }",
	}
	for _, input := range inputs {
		tokens, err := New("t.forge", input).Tokenize()
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", input, err)
		}
		for _, tok := range tokens {
			if tok.Kind == EOF || tok.Kind == NEWLINE {
				continue
			}
			re, err := New("t.forge", tok.Lexeme).Tokenize()
			if err != nil {
				t.Fatalf("re-lexing %q failed: %v", tok.Lexeme, err)
			}
			nonEOF := re[:len(re)-1]
			if len(nonEOF) != 1 {
				t.Fatalf("re-lexing %q produced %d tokens, want 1", tok.Lexeme, len(nonEOF))
			}
			if nonEOF[0].Kind != tok.Kind {
				t.Errorf("re-lexing %q: got kind %s, want %s", tok.Lexeme, nonEOF[0].Kind, tok.Kind)
			}
		}
	}
}
