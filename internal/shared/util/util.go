package util

import (
	"runtime"
	"unicode/utf8"
)

// RuneOffsetToByte converts a character offset into a byte offset.
// ok is false when the offset is negative or past the end of content.
func RuneOffsetToByte(content []byte, offset int) (int, bool) {
	if offset < 0 {
		return 0, false
	}
	chars := 0
	for i := range string(content) {
		if chars == offset {
			return i, true
		}
		chars++
	}
	if chars == offset {
		return len(content), true
	}
	return 0, false
}

// ByteOffsetToRune converts a byte offset into a character offset, clamping
// to the content bounds.
func ByteOffsetToRune(content []byte, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	return utf8.RuneCount(content[:offset])
}

// RuneLen returns the number of characters in content.
func RuneLen(content []byte) int {
	return utf8.RuneCount(content)
}

// GetHeapAllocMB returns the current heap allocation in MB.
func GetHeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}
