// Package text provides source positions, ranges and locations for BSL
// documents.
//
// Positions are zero-based (line, character) pairs addressing UTF-8 text.
// Ranges are half-open: the end position is not part of the range. All types
// are comparable value types so they can be used directly as map keys.
package text

import "fmt"

// Position is a zero-based line/character address inside a document.
type Position struct {
	// Line is the zero-based line number.
	Line int

	// Character is the zero-based column on the line.
	Character int
}

// Before reports whether p addresses a point strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// String returns the position in line:character form.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a half-open span [Start, End) inside one document.
type Range struct {
	// Start is the first position covered by the range.
	Start Position

	// End is the first position past the range.
	End Position
}

// NewRange constructs a range from start and end line/character values.
func NewRange(startLine, startChar, endLine, endChar int) Range {
	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

// Contains reports whether the position lies inside the range.
// The start is included, the end is not.
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// Empty reports whether the range covers no positions.
func (r Range) Empty() bool {
	return !r.Start.Before(r.End)
}

// String returns the range in startLine:startChar-endLine:endChar form.
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Location is a range inside a specific document.
type Location struct {
	// URI identifies the document.
	URI string

	// Range is the span inside the document.
	Range Range
}
