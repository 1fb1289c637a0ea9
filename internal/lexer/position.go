package lexer

import "sort"

// Position is a 1-based line and column pair derived from a byte offset.
type Position struct {
	Line   int
	Column int
}

// LineIndex maps byte offsets to line/column positions. The line-start table
// is computed once per text; lookups are binary searches over it.
type LineIndex struct {
	starts []int
}

func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Position converts a byte offset into a line/column pair. Offsets past the
// end of the text map onto the last line.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return Position{
		Line:   line + 1,
		Column: offset - li.starts[line] + 1,
	}
}

// LineCount returns the number of lines in the indexed text.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}
