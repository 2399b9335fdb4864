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

import "github.com/eqlog-lang/eqlog-go/pkg/lex"

// Token kinds produced by the theory-source lexer.
const (
	tokEOF uint = iota
	tokWhitespace
	tokComment
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokSemi
	tokBang
	tokAmp
	tokEquals
	tokImplies     // =>
	tokReduces     // ~>
	tokReducesSym  // <~>
	tokArrow       // ->
	tokUpperIdent
	tokLowerIdent
	tokWildcard // _
	tokKwSort
	tokKwPred
	tokKwFunc
	tokKwAxiom
)

var (
	whitespace = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))
	comment    = lex.And(lex.Unit('/', '/'), lex.Until('\n'))

	digit  = lex.Within('0', '9')
	lower  = lex.Within('a', 'z')
	upper  = lex.Within('A', 'Z')
	under  = lex.Unit('_')
	idCont = lex.Many(lex.Or(lower, upper, digit, under))

	upperIdent = lex.And(upper, idCont)
	lowerIdent = lex.And(lower, idCont)
)

// wildcardRule matches exactly a single "_" not followed by an identifier
// character. A "_" followed by one is not matched here, and no other rule
// accepts an identifier that starts with "_", so it is a lex error.
func wildcardRule(items []rune) uint {
	if len(items) == 0 || items[0] != '_' {
		return 0
	}

	if len(items) > 1 {
		c := items[1]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return 0
		}
	}

	return 1
}

var rules = []lex.Rule[rune]{
	lex.NewRule(comment, tokComment),
	lex.NewRule(whitespace, tokWhitespace),
	lex.NewRule(lex.Unit('('), tokLParen),
	lex.NewRule(lex.Unit(')'), tokRParen),
	lex.NewRule(lex.Unit(','), tokComma),
	lex.NewRule(lex.Unit('<', '~', '>'), tokReducesSym),
	lex.NewRule(lex.Unit('~', '>'), tokReduces),
	lex.NewRule(lex.Unit('=', '>'), tokImplies),
	lex.NewRule(lex.Unit('-', '>'), tokArrow),
	lex.NewRule(lex.Unit(':'), tokColon),
	lex.NewRule(lex.Unit(';'), tokSemi),
	lex.NewRule(lex.Unit('!'), tokBang),
	lex.NewRule(lex.Unit('&'), tokAmp),
	lex.NewRule(lex.Unit('='), tokEquals),
	lex.NewRule(wildcardRule, tokWildcard),
	lex.NewRule(upperIdent, tokUpperIdent),
	lex.NewRule(lowerIdent, tokLowerIdent),
}

var keywords = map[string]uint{
	"sort":  tokKwSort,
	"pred":  tokKwPred,
	"func":  tokKwFunc,
	"axiom": tokKwAxiom,
}

// scannedToken is a lexer token together with the text it spans, used so the
// parser doesn't need to re-slice the source for every identifier.
type scannedToken struct {
	kind       uint
	start, end int
	text       string
}

// scan tokenises the entire source, dropping whitespace and comments and
// reclassifying lower-case identifiers that happen to be keywords.  It
// returns the index of the first unconsumed rune if the source contains text
// no rule recognises (ok == false in that case).
func scan(contents []rune) (toks []scannedToken, ok bool, badAt int) {
	lexer := lex.NewLexer(contents, rules...)
	//
	for lexer.Remaining() > 0 {
		tok := lexer.Next()
		if tok == nil {
			return toks, false, int(lexer.Index())
		}
		//
		if tok.Kind == tokWhitespace || tok.Kind == tokComment {
			continue
		}
		//
		text := string(contents[tok.Start:tok.End])
		kind := tok.Kind
		//
		if kind == tokLowerIdent {
			if kw, isKw := keywords[text]; isKw {
				kind = kw
			}
		}
		//
		toks = append(toks, scannedToken{kind, tok.Start, tok.End, text})
	}
	//
	return toks, true, 0
}
