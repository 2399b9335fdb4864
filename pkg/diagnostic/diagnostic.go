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

// Package diagnostic pretty-prints source.SyntaxErrors to a terminal: the
// offending line, a caret underline beneath the exact span, and a
// terminal-width-aware truncation so a long line doesn't wrap the caret out
// from under the text it's supposed to point at.
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// defaultWidth is used when the output isn't a terminal (piped to a file, or
// running under a test harness) and term.GetSize can't report one.
const defaultWidth = 100

// Print writes one formatted diagnostic for err to w, fitting the quoted
// line to the terminal width reported by fd (pass int(os.Stderr.Fd()) from
// the caller; fd is ignored, and defaultWidth used instead, if it does not
// name a terminal).
func Print(w io.Writer, fd int, err *source.SyntaxError) {
	width := termWidth(fd)
	pos := err.SourceFile().PositionOf(err.Span().Start())
	//
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", err.SourceFile().Filename(), pos.Line, pos.Column, err.Kind(), err.Message())
	//
	line, _, col := enclosingLine(err.SourceFile(), err.Span().Start())
	highlightLen := err.Span().Length()
	if highlightLen < 1 {
		highlightLen = 1
	}
	//
	shown, offset := fitWidth(line, col, width)
	fmt.Fprintln(w, shown)
	fmt.Fprint(w, strings.Repeat(" ", col-offset-1))
	fmt.Fprintln(w, strings.Repeat("^", clampCaret(highlightLen, len(shown)-(col-offset)+1)))
}

// PrintAll reports every error in errs, in order.
func PrintAll(w io.Writer, fd int, errs []*source.SyntaxError) {
	for _, e := range errs {
		Print(w, fd, e)
	}
}

func termWidth(fd int) int {
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	//
	return defaultWidth
}

// enclosingLine returns the line of text containing index, its starting
// offset within the file, and the 1-based column of index within that line.
func enclosingLine(f *source.File, index int) (string, int, int) {
	contents := f.Contents()
	if index >= len(contents) {
		index = len(contents) - 1
	}
	//
	if index < 0 {
		return "", 0, 1
	}
	//
	start := index
	for start > 0 && contents[start-1] != '\n' {
		start--
	}
	//
	end := index
	for end < len(contents) && contents[end] != '\n' {
		end++
	}
	//
	return string(contents[start:end]), start, index - start + 1
}

// fitWidth truncates line (with an ellipsis on whichever side is cut) so it
// fits within width columns while keeping column col visible, returning the
// truncated text and the offset (in original-line columns) its first
// character corresponds to.
func fitWidth(line string, col int, width int) (string, int) {
	runes := []rune(line)
	if width <= 0 || len(runes) <= width {
		return line, 0
	}
	//
	const ellipsis = "... "
	budget := width - len(ellipsis)
	if budget < 1 {
		budget = 1
	}
	//
	start := col - 1 - budget/2
	if start < 0 {
		start = 0
	}
	//
	end := start + budget
	if end > len(runes) {
		end = len(runes)
		start = end - budget
		if start < 0 {
			start = 0
		}
	}
	//
	shown := string(runes[start:end])
	if start > 0 {
		shown = ellipsis + shown
	}
	//
	if end < len(runes) {
		shown += ellipsis
	}
	//
	offset := start
	if start > 0 {
		offset -= len(ellipsis)
	}
	//
	return shown, offset
}

func clampCaret(n, max int) int {
	if max < 1 {
		return 1
	}
	//
	if n > max {
		return max
	}
	//
	return n
}
