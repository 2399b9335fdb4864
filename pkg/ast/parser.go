// Copyright the eqlog-go authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"fmt"

	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// Parse parses an entire theory source file into a Module. The parser is
// context-free: it never consults declarations while parsing axioms, so the
// same grammar accepts every syntactically well-formed file regardless of
// how its symbols are later used. All semantic checks are deferred to the
// elaborator.
func Parse(srcfile *source.File) (*Module, []error) {
	toks, ok, badAt := scan(srcfile.Contents())
	if !ok {
		span := source.NewSpan(badAt, badAt+1)
		return nil, []error{srcfile.SyntaxError("LexError", span, "unrecognised character")}
	}
	//
	p := &parser{srcfile: srcfile, toks: toks}
	mod := p.parseModule()
	//
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	//
	return mod, nil
}

type parser struct {
	srcfile *source.File
	toks    []scannedToken
	index   int
	errs    []error
}

func (p *parser) eof() bool { return p.index >= len(p.toks) }

func (p *parser) peek() (scannedToken, bool) {
	if p.eof() {
		return scannedToken{}, false
	}
	//
	return p.toks[p.index], true
}

func (p *parser) peekKind() uint {
	tok, ok := p.peek()
	if !ok {
		return tokEOF
	}
	//
	return tok.kind
}

func (p *parser) advance() scannedToken {
	tok := p.toks[p.index]
	p.index++
	//
	return tok
}

// fail records a syntax error at the current position and returns a poison
// token so the caller can keep constructing a (discarded) AST node rather
// than threading an error return through every helper.
func (p *parser) fail(kind, msg string) scannedToken {
	var span source.Span
	//
	if tok, ok := p.peek(); ok {
		span = source.NewSpan(tok.start, tok.end)
	} else {
		n := len(p.srcfile.Contents())
		span = source.NewSpan(n, n)
	}
	//
	p.errs = append(p.errs, p.srcfile.SyntaxError(kind, span, msg))
	//
	return scannedToken{}
}

func (p *parser) expect(kind uint, what string) scannedToken {
	if p.peekKind() != kind {
		return p.fail("ParseError", fmt.Sprintf("expected %s", what))
	}
	//
	return p.advance()
}

func (p *parser) match(kind uint) bool {
	if p.peekKind() == kind {
		p.advance()
		return true
	}
	//
	return false
}

func (p *parser) spanOf(start scannedToken) source.Span {
	end := start.end
	if p.index > 0 {
		end = p.toks[p.index-1].end
	}
	//
	return source.NewSpan(start.start, end)
}

func (p *parser) parseModule() *Module {
	mod := &Module{}
	//
	for !p.eof() && len(p.errs) == 0 {
		switch p.peekKind() {
		case tokKwSort:
			mod.Decls = append(mod.Decls, p.parseSortDecl())
		case tokKwPred:
			mod.Decls = append(mod.Decls, p.parsePredDecl())
		case tokKwFunc:
			mod.Decls = append(mod.Decls, p.parseFuncDecl())
		case tokKwAxiom:
			mod.Decls = append(mod.Decls, p.parseAxiomDecl())
		default:
			p.fail("ParseError", "expected a declaration (sort, pred, func or axiom)")
		}
	}
	//
	return mod
}

func (p *parser) parseSortDecl() *SortDecl {
	start := p.advance() // "sort"
	name := p.expect(tokUpperIdent, "a sort name")
	p.expect(tokSemi, "';'")
	//
	return &SortDecl{Name: name.text, Loc: p.spanOf(start)}
}

func (p *parser) parseIdentList() []string {
	var names []string
	//
	for p.peekKind() == tokUpperIdent {
		names = append(names, p.advance().text)
		if !p.match(tokComma) {
			break
		}
	}
	//
	return names
}

func (p *parser) parsePredDecl() *PredDecl {
	start := p.advance() // "pred"
	name := p.expect(tokUpperIdent, "a predicate name")
	p.expect(tokLParen, "'('")
	params := p.parseIdentList()
	p.expect(tokRParen, "')'")
	p.expect(tokSemi, "';'")
	//
	return &PredDecl{Name: name.text, Params: params, Loc: p.spanOf(start)}
}

func (p *parser) parseFuncDecl() *FuncDecl {
	start := p.advance() // "func"
	name := p.expect(tokUpperIdent, "a function name")
	p.expect(tokColon, "':'")
	//
	var domain []string
	//
	if p.match(tokLParen) {
		domain = p.parseIdentList() // "()" denotes a constant
		p.expect(tokRParen, "')'")
	} else {
		domain = p.parseIdentList()
	}
	//
	p.expect(tokArrow, "'->'")
	codomain := p.expect(tokUpperIdent, "a codomain sort")
	p.expect(tokSemi, "';'")
	//
	return &FuncDecl{Name: name.text, Domain: domain, Codomain: codomain.text, Loc: p.spanOf(start)}
}

func (p *parser) parseAxiomDecl() *AxiomDecl {
	start := p.advance() // "axiom"
	name := p.expect(tokLowerIdent, "an axiom name")
	p.expect(tokColon, "':'")
	//
	decl := &AxiomDecl{Name: name.text}
	//
	first, arrow, firstAtom := p.parseClauseUnit()
	//
	if arrow != tokEOF {
		decl.Kind, decl.From, decl.To = p.finishReduction(first, arrow)
	} else {
		decl.Premise = []Atom{firstAtom}
		//
		for p.match(tokAmp) {
			decl.Premise = append(decl.Premise, p.parseAtom())
		}
		//
		p.expect(tokImplies, "'=>'")
		//
		second, arrow2, secondAtom := p.parseClauseUnit()
		//
		if arrow2 != tokEOF {
			decl.Kind, decl.From, decl.To = p.finishReduction(second, arrow2)
		} else {
			decl.Kind = Implication
			decl.Conclusion = []Atom{secondAtom}
			//
			for p.match(tokAmp) {
				decl.Conclusion = append(decl.Conclusion, p.parseAtom())
			}
		}
	}
	//
	p.expect(tokSemi, "';'")
	decl.Loc = p.spanOf(start)
	//
	return decl
}

func (p *parser) finishReduction(from Term, arrow uint) (AxiomKind, Term, Term) {
	to := p.parseTerm()
	//
	if arrow == tokReducesSym {
		return SymmetricReduction, from, to
	}
	//
	return Reduction, from, to
}

// parseClauseUnit parses one term and classifies what follows it: either it
// is immediately followed by a reduction arrow (in which case arrow names
// which one and the returned atom is nil), or it resolves to a full atom.
func (p *parser) parseClauseUnit() (term Term, arrow uint, atom Atom) {
	t := p.parseTerm()
	//
	switch p.peekKind() {
	case tokReduces, tokReducesSym:
		return t, p.advance().kind, nil
	case tokBang:
		bangTok := p.advance()
		return nil, tokEOF, &DefinedAtom{Term: t, Loc: source.NewSpan(t.Span().Start(), bangTok.end)}
	case tokEquals:
		p.advance()
		rhs := p.parseTerm()
		return nil, tokEOF, &EqAtom{Lhs: t, Rhs: rhs, Loc: source.NewSpan(t.Span().Start(), rhs.Span().End())}
	case tokColon:
		v, isVar := t.(*VarTerm)
		if !isVar {
			p.fail("ParseError", "sort ascription must apply to a variable")
			return nil, tokEOF, &AscribeAtom{}
		}
		//
		p.advance()
		sort := p.expect(tokUpperIdent, "a sort name")
		return nil, tokEOF, &AscribeAtom{Var: v.Name, Sort: sort.text, Loc: source.NewSpan(t.Span().Start(), sort.end)}
	default:
		app, isApp := t.(*AppTerm)
		if !isApp {
			p.fail("ParseError", "expected a predicate application, definedness, equality or sort ascription")
			return nil, tokEOF, &PredAtom{}
		}
		//
		return nil, tokEOF, &PredAtom{Pred: app.Func, Args: app.Args, Loc: app.Loc}
	}
}

func (p *parser) parseAtom() Atom {
	_, _, atom := p.parseClauseUnit()
	return atom
}

func (p *parser) parseTerm() Term {
	switch p.peekKind() {
	case tokWildcard:
		tok := p.advance()
		return &VarTerm{Name: "_", Loc: source.NewSpan(tok.start, tok.end)}
	case tokLowerIdent:
		tok := p.advance()
		return &VarTerm{Name: tok.text, Loc: source.NewSpan(tok.start, tok.end)}
	case tokUpperIdent:
		start := p.advance()
		p.expect(tokLParen, "'('")
		//
		var args []Term
		//
		for p.peekKind() != tokRParen && !p.eof() {
			args = append(args, p.parseTerm())
			if !p.match(tokComma) {
				break
			}
		}
		//
		end := p.expect(tokRParen, "')'")
		//
		return &AppTerm{Func: start.text, Args: args, Loc: source.NewSpan(start.start, end.end)}
	default:
		p.fail("ParseError", "expected a variable or function application")
		return &VarTerm{Name: "_"}
	}
}
