package tui

import (
	"unicode"
)

// lineIndex maps character offsets to lines of a buffer.
type lineIndex struct {
	runes  []rune
	starts []int // character offset of each line start
}

func indexLines(content []byte) lineIndex {
	runes := []rune(string(content))
	starts := []int{0}
	for i, r := range runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{runes: runes, starts: starts}
}

func (li lineIndex) total() int { return len(li.runes) }

func (li lineIndex) lineCount() int { return len(li.starts) }

// lineLen is the length of line without its newline.
func (li lineIndex) lineLen(line int) int {
	end := li.total()
	if line+1 < len(li.starts) {
		end = li.starts[line+1] - 1
	}
	return end - li.starts[line]
}

func (li lineIndex) line(line int) []rune {
	start := li.starts[line]
	return li.runes[start : start+li.lineLen(line)]
}

// locate returns the 0-based line and column of offset.
func (li lineIndex) locate(offset int) (line, col int) {
	offset = clamp(offset, 0, li.total())
	lo, hi := 0, len(li.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - li.starts[lo]
}

func (li lineIndex) offsetAt(line, col int) int {
	line = clamp(line, 0, li.lineCount()-1)
	return li.starts[line] + clamp(col, 0, li.lineLen(line))
}

func (li lineIndex) left(offset int) int { return clamp(offset-1, 0, li.total()) }

func (li lineIndex) right(offset int) int { return clamp(offset+1, 0, li.total()) }

func (li lineIndex) up(offset int) int {
	line, col := li.locate(offset)
	if line == 0 {
		return li.starts[0]
	}
	return li.offsetAt(line-1, col)
}

func (li lineIndex) down(offset int) int {
	line, col := li.locate(offset)
	if line == li.lineCount()-1 {
		return li.starts[line] + li.lineLen(line)
	}
	return li.offsetAt(line+1, col)
}

func (li lineIndex) lineStart(offset int) int {
	line, _ := li.locate(offset)
	return li.starts[line]
}

func (li lineIndex) lineEnd(offset int) int {
	line, _ := li.locate(offset)
	return li.starts[line] + li.lineLen(line)
}

// wordForward moves to the start of the next identifier-like word.
func (li lineIndex) wordForward(offset int) int {
	i := clamp(offset, 0, li.total())
	for i < li.total() && isWordRune(li.runes[i]) {
		i++
	}
	for i < li.total() && !isWordRune(li.runes[i]) {
		i++
	}
	return i
}

// wordBackward moves to the start of the previous word.
func (li lineIndex) wordBackward(offset int) int {
	i := clamp(offset, 0, li.total())
	for i > 0 && !isWordRune(li.runes[i-1]) {
		i--
	}
	for i > 0 && isWordRune(li.runes[i-1]) {
		i--
	}
	return i
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
