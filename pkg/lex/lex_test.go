package lex

import "testing"

const (
	lparen uint = 1
	rparen uint = 2
	number uint = 3
)

var testRules = []Rule[rune]{
	NewRule(Unit('('), lparen),
	NewRule(Unit(')'), rparen),
	NewRule(Many(Within('0', '9')), number),
}

func TestLexerEmpty(t *testing.T) {
	lexer := NewLexer([]rune(""), testRules...)
	//
	if tok := lexer.Next(); tok != nil {
		t.Fatalf("expected nil, got %v", tok)
	}
}

func TestLexerBraces(t *testing.T) {
	lexer := NewLexer([]rune("()"), testRules...)
	//
	tok := lexer.Next()
	if tok == nil || tok.Kind != lparen || tok.Start != 0 || tok.End != 1 {
		t.Fatalf("unexpected first token: %v", tok)
	}
	//
	tok = lexer.Next()
	if tok == nil || tok.Kind != rparen || tok.Start != 1 || tok.End != 2 {
		t.Fatalf("unexpected second token: %v", tok)
	}
	//
	if lexer.Remaining() != 0 {
		t.Fatalf("expected no remaining input, got %d", lexer.Remaining())
	}
}

func TestLexerUnknown(t *testing.T) {
	lexer := NewLexer([]rune("x"), testRules...)
	//
	if tokens := lexer.Collect(); len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
	//
	if lexer.Remaining() != 1 {
		t.Fatalf("expected 1 remaining item, got %d", lexer.Remaining())
	}
}

func TestLexerNumbers(t *testing.T) {
	lexer := NewLexer([]rune("(123)"), testRules...)
	tokens := lexer.Collect()
	//
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	} else if tokens[1].Kind != number || tokens[1].Start != 1 || tokens[1].End != 4 {
		t.Fatalf("unexpected number token: %v", tokens[1])
	}
}
