package util

// Position is a 1-based line and character column.
type Position struct {
	Line   int
	Column int
}

// LineColumnToOffset converts a 1-based line and column into a character
// offset. A column one past the last character of a line is accepted.
func LineColumnToOffset(content []byte, line, column int) (int, bool) {
	if line < 1 || column < 1 {
		return 0, false
	}
	curLine, curCol, offset := 1, 1, 0
	for _, r := range string(content) {
		if curLine == line && curCol == column {
			return offset, true
		}
		if r == '\n' {
			if curLine == line {
				return 0, false
			}
			curLine++
			curCol = 1
		} else {
			curCol++
		}
		offset++
	}
	if curLine == line && curCol == column {
		return offset, true
	}
	return 0, false
}

// OffsetToPosition converts a character offset into a 1-based position,
// clamping out of range offsets.
func OffsetToPosition(content []byte, offset int) Position {
	pos := Position{Line: 1, Column: 1}
	i := 0
	for _, r := range string(content) {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
		i++
	}
	return pos
}
