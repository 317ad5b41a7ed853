// Package diag renders human-readable excerpts pointing at the source
// span that tripped the schema compiler:
//
//	Tripped on line 2
//
//	     1 │ headers: Struct(
//	     2 │     timestamp: Foo
//	     ? │                ^^^
//
// Rendering is a read-only scan over the original source; no parser state
// is touched. The located span is the first occurrence of the offending
// substring, which for pathological inputs may not be the actual trip
// site, but is close enough to be actionable.
package diag

import (
	"fmt"
	"strings"
)

// Characters bounding an issue span: structural delimiters and newline.
const structural = "()[]{}<>\n"

// Render formats the diagnostic excerpt for the given unparsed substring
// of source.
func Render(source, unparsed string) string {
	issueStart := strings.Index(source, unparsed)
	if issueStart < 0 {
		issueStart = 0
	}

	// extend forward to the next structural character or end of source
	issueEnd := len(source)
	if i := strings.IndexAny(source[issueStart:], structural); i >= 0 {
		issueEnd = issueStart + i
	}
	// a span starting on a structural character still gets one caret
	if issueEnd == issueStart && issueStart < len(source) {
		issueEnd = issueStart + 1
	}

	// gutter padding: offset of the issue within its line
	pad := issueStart
	if i := strings.LastIndex(source[:issueStart], "\n"); i >= 0 {
		pad = issueStart - i - 1
	}

	// end of the offending line
	lineEnd := len(source)
	if i := strings.Index(source[issueEnd:], "\n"); i >= 0 {
		lineEnd = issueEnd + i
	}

	lineNumber := strings.Count(source[:issueStart], "\n") + 1

	var b strings.Builder
	fmt.Fprintf(&b, "Tripped on line %d\n\n", lineNumber)
	for i, line := range strings.Split(source[:lineEnd], "\n") {
		fmt.Fprintf(&b, "   %3d │ %s\n", i+1, line)
	}
	b.WriteString("     ? │ ")
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(strings.Repeat("^", issueEnd-issueStart))
	b.WriteString("\n")

	return b.String()
}
