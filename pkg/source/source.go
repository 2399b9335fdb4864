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

// Package source provides position tracking over theory source files:
// spans, line/column lookup and syntax errors that can render themselves
// against the original text.
package source

import (
	"fmt"
	"os"
)

// Span represents a contiguous slice of the original string.  The physical
// indices are retained (rather than a string slice) so the enclosing line and
// column can be recovered later.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a new span, checking the internal invariant.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p Span) Start() int { return p.start }

// End returns one past the last index of this span in the original string.
func (p Span) End() int { return p.end }

// Length returns the number of characters covered by this span.
func (p Span) Length() int { return p.end - p.start }

// File represents a source file being compiled.
type File struct {
	filename string
	contents []rune
}

// ReadFiles reads a given set of source files, or produces an error.
func ReadFiles(filenames ...string) ([]*File, error) {
	files := make([]*File, len(filenames))
	//
	for i, n := range filenames {
		bytes, err := os.ReadFile(n)
		if err != nil {
			return nil, err
		}
		//
		files[i] = NewFile(n, bytes)
	}
	//
	return files, nil
}

// NewFile constructs a new source file from a given byte array.
func NewFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string { return s.filename }

// Contents returns the contents of this source file.
func (s *File) Contents() []rune { return s.contents }

// Position identifies a 1-indexed line and column within a File.
type Position struct {
	Line   int
	Column int
}

// PositionOf determines the line/column (both counting from 1) of a given
// index into the file's contents.  An index beyond the end of the file is
// clamped to the last position.
func (s *File) PositionOf(index int) Position {
	line, col := 1, 1
	//
	for i := 0; i < index && i < len(s.contents); i++ {
		if s.contents[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	//
	return Position{line, col}
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given kind and a printf-style message.
func (s *File) SyntaxError(kind string, span Span, format string, args ...any) *SyntaxError {
	return &SyntaxError{s, kind, span, fmt.Sprintf(format, args...)}
}

// SyntaxError is a structured, position-tracking error.  Every compile-time
// error kind from the taxonomy (LexError, ParseError, UndeclaredSymbol, ...)
// is reported through this type.
type SyntaxError struct {
	srcfile *File
	kind    string
	span    Span
	msg     string
}

// SourceFile returns the underlying file this error covers.
func (p *SyntaxError) SourceFile() *File { return p.srcfile }

// Span returns the span of the original text this error is reported over.
func (p *SyntaxError) Span() Span { return p.span }

// Kind returns the taxonomy kind of this error (e.g. "SortMismatch").
func (p *SyntaxError) Kind() string { return p.kind }

// Message returns the human-readable message.
func (p *SyntaxError) Message() string { return p.msg }

// Error implements the error interface, formatted as file:line:column: kind: message.
func (p *SyntaxError) Error() string {
	pos := p.srcfile.PositionOf(p.span.Start())
	return fmt.Sprintf("%s:%d:%d: %s: %s", p.srcfile.Filename(), pos.Line, pos.Column, p.kind, p.msg)
}
